package resolver

import (
	"testing"

	"github.com/barnforge/scriptcore/store"
	"github.com/barnforge/scriptcore/types"
)

func newTestStore() (*store.InMemoryStore, *store.GameObject, *store.GameObject) {
	st := store.NewInMemoryStore()
	room := &store.GameObject{ID: 1, DbRef: 1, Properties: map[string]*store.Property{
		"name": {Name: "name", Value: types.String("Town Square")},
	}}
	st.AddObject(room)

	player := &store.Player{GameObject: store.GameObject{
		ID: 2, DbRef: 2, Location: room.ID,
		Properties: map[string]*store.Property{"name": {Name: "name", Value: types.String("Alice")}},
	}, SessionHandle: "sess-1"}
	st.AddPlayer(player)

	sword := &store.GameObject{ID: 3, DbRef: 3, Location: room.ID, Properties: map[string]*store.Property{
		"name": {Name: "name", Value: types.String("rusty sword")},
	}}
	st.AddObject(sword)

	return st, room, &player.GameObject
}

func TestResolveObjectMeAndHere(t *testing.T) {
	st, room, player := newTestStore()
	r := New(st, types.Nothing)

	me, err := r.ResolveObject("me", player)
	if err != nil || me.ID != player.ID {
		t.Fatalf("me: got %+v, err %v", me, err)
	}
	here, err := r.ResolveObject("here", player)
	if err != nil || here.ID != room.ID {
		t.Fatalf("here: got %+v, err %v", here, err)
	}
}

func TestResolveObjectByDbref(t *testing.T) {
	st, _, player := newTestStore()
	r := New(st, types.Nothing)
	obj, err := r.ResolveObject("#3", player)
	if err != nil || obj.ID != 3 {
		t.Fatalf("got %+v, err %v", obj, err)
	}
}

func TestResolveObjectByNameContainment(t *testing.T) {
	st, _, player := newTestStore()
	r := New(st, types.Nothing)
	obj, err := r.ResolveObject("sword", player)
	if err != nil || obj.ID != 3 {
		t.Fatalf("got %+v, err %v", obj, err)
	}
}

func TestResolveObjectUnknownFails(t *testing.T) {
	st, _, player := newTestStore()
	r := New(st, types.Nothing)
	if _, err := r.ResolveObject("nonexistent-thing", player); err == nil {
		t.Fatal("expected resolution failure")
	}
}
