package runtime

import (
	"github.com/barnforge/scriptcore/script"
	"github.com/barnforge/scriptcore/types"
)

// GetProperty implements script.Host. The receiver must be an object
// reference; a missing property reads as null rather than failing, per
// the store's GetProperty contract.
func (c *ExecutionContext) GetProperty(target types.Value, name string, pos script.Position) (types.Value, *script.EvalError) {
	if target.Kind() != types.KindObject {
		return types.Null, typeErrorAt(pos, "property access target", target)
	}
	obj := c.ObjectOrTombstone(target.Obj())
	v, _ := c.Store.GetProperty(obj, name)
	return v, nil
}

// SetProperty implements script.Host.
func (c *ExecutionContext) SetProperty(target types.Value, name string, value types.Value, pos script.Position) *script.EvalError {
	if target.Kind() != types.KindObject {
		return typeErrorAt(pos, "property assignment target", target)
	}
	obj := c.ObjectOrTombstone(target.Obj())
	c.Store.SetProperty(obj, name, value)
	return nil
}

func typeErrorAt(pos script.Position, what string, got types.Value) *script.EvalError {
	return &script.EvalError{Kind: types.ErrTypeMismatch, Message: what + " must be an object, got " + got.Kind().String(), Pos: pos}
}

// Call implements script.Host: it dispatches every call-by-name
// expression the preprocessor's rewrite rules and the invocation
// surface (§4.5, §6) can produce.
func (c *ExecutionContext) Call(name string, args []types.Value, pos script.Position) (types.Value, *script.EvalError) {
	switch name {
	case "GetObjectByDbRef":
		return c.callGetObjectByDbRef(args, pos)
	case "GetObjectById":
		return c.callGetObjectById(args, pos)
	case "ResolveRequired":
		return c.callResolveRequired(args, pos)
	case "VariablesGet":
		return c.callVariablesGet(args, pos)
	case "GetParameter":
		return c.callGetParameter(args, pos)
	case "GetProperty":
		return c.callGetPropertyBuiltin(args, pos)
	case "SetProperty":
		return c.callSetPropertyBuiltin(args, pos)
	case "CallFunctionOnObject":
		return c.callFunctionOnObject(args, pos)
	case "CallVerb":
		return c.callVerb(args, pos)
	case "CallFunction":
		return c.callFunction(args, pos)
	case "Say", "notify", "SayToRoom":
		return c.callNotify(name, args, pos)
	default:
		return types.Null, &script.EvalError{Kind: types.ErrResolutionFailed, Message: "unknown call target " + name, Pos: pos}
	}
}

func (c *ExecutionContext) callGetObjectByDbRef(args []types.Value, pos script.Position) (types.Value, *script.EvalError) {
	if len(args) != 1 || args[0].Kind() != types.KindInt {
		return types.Null, objectError(pos, "GetObjectByDbRef expects a single integer argument")
	}
	obj := c.Store.GetObjectByDbRef(args[0].Int())
	if obj == nil {
		return types.Null, objectError(pos, "no object with dbref #%d", args[0].Int())
	}
	return types.Object(obj.ID), nil
}

func (c *ExecutionContext) callGetObjectById(args []types.Value, pos script.Position) (types.Value, *script.EvalError) {
	if len(args) != 1 || args[0].Kind() != types.KindString {
		return types.Null, objectError(pos, "GetObjectById expects a single string argument")
	}
	obj, err := c.Resolver.ResolveByID(args[0].Str())
	if err != nil {
		return types.Null, objectError(pos, "%s", err)
	}
	return types.Object(obj.ID), nil
}

func (c *ExecutionContext) callResolveRequired(args []types.Value, pos script.Position) (types.Value, *script.EvalError) {
	if len(args) != 1 || args[0].Kind() != types.KindString {
		return types.Null, objectError(pos, "ResolveRequired expects a single string argument")
	}
	obj, err := c.Resolver.ResolveObject(args[0].Str(), c.Player)
	if err != nil {
		return types.Null, objectError(pos, "%s", err)
	}
	return types.Object(obj.ID), nil
}

func (c *ExecutionContext) callVariablesGet(args []types.Value, pos script.Position) (types.Value, *script.EvalError) {
	if len(args) != 1 || args[0].Kind() != types.KindString {
		return types.Null, objectError(pos, "VariablesGet expects a single string argument")
	}
	return types.String(c.Variables[args[0].Str()]), nil
}

func (c *ExecutionContext) callGetParameter(args []types.Value, pos script.Position) (types.Value, *script.EvalError) {
	if len(args) != 1 || args[0].Kind() != types.KindString {
		return types.Null, objectError(pos, "GetParameter expects a single string argument")
	}
	v, ok := c.NamedParameters[args[0].Str()]
	if !ok {
		return types.Null, &script.EvalError{Kind: types.ErrArityMismatch, Message: "no parameter named " + args[0].Str(), Pos: pos}
	}
	return v, nil
}

func (c *ExecutionContext) callGetPropertyBuiltin(args []types.Value, pos script.Position) (types.Value, *script.EvalError) {
	if len(args) != 2 || args[1].Kind() != types.KindString {
		return types.Null, objectError(pos, "GetProperty expects (object, name)")
	}
	return c.GetProperty(args[0], args[1].Str(), pos)
}

func (c *ExecutionContext) callSetPropertyBuiltin(args []types.Value, pos script.Position) (types.Value, *script.EvalError) {
	if len(args) != 3 || args[1].Kind() != types.KindString {
		return types.Null, objectError(pos, "SetProperty expects (object, name, value)")
	}
	if err := c.SetProperty(args[0], args[1].Str(), args[2], pos); err != nil {
		return types.Null, err
	}
	return args[2], nil
}

func (c *ExecutionContext) callFunctionOnObject(args []types.Value, pos script.Position) (types.Value, *script.EvalError) {
	if len(args) < 2 || args[0].Kind() != types.KindObject || args[1].Kind() != types.KindString {
		return types.Null, objectError(pos, "CallFunctionOnObject expects (object, name, args...)")
	}
	target := c.ObjectOrTombstone(args[0].Obj())
	return c.Invoker.CallFunctionOnObject(target, args[1].Str(), args[2:], c)
}

func (c *ExecutionContext) callVerb(args []types.Value, pos script.Position) (types.Value, *script.EvalError) {
	if len(args) < 2 || args[1].Kind() != types.KindString {
		return types.Null, objectError(pos, "CallVerb expects (ref, name, args...)")
	}
	return c.Invoker.CallVerb(refString(args[0]), args[1].Str(), args[2:], c)
}

func (c *ExecutionContext) callFunction(args []types.Value, pos script.Position) (types.Value, *script.EvalError) {
	if len(args) < 2 || args[1].Kind() != types.KindString {
		return types.Null, objectError(pos, "CallFunction expects (ref, name, args...)")
	}
	return c.Invoker.CallFunction(refString(args[0]), args[1].Str(), args[2:], c)
}

func refString(v types.Value) string {
	if v.Kind() == types.KindObject {
		return v.Obj().String()
	}
	return v.Str()
}

func (c *ExecutionContext) callNotify(name string, args []types.Value, pos script.Position) (types.Value, *script.EvalError) {
	if c.CommandProcessor == nil {
		return types.Null, nil
	}
	switch name {
	case "Say":
		if len(args) != 1 {
			return types.Null, objectError(pos, "Say expects a single message argument")
		}
		if c.Player != nil {
			c.notifyObjectID(c.Player.ID, args[0].String())
		}
	case "notify":
		if len(args) != 2 || args[0].Kind() != types.KindObject {
			return types.Null, objectError(pos, "notify expects (player, message)")
		}
		c.notifyObjectID(args[0].Obj(), args[1].String())
	case "SayToRoom":
		if len(args) < 1 {
			return types.Null, objectError(pos, "SayToRoom expects at least a message argument")
		}
		excludeSelf := len(args) > 1 && args[1].Truthy()
		c.sayToRoom(args[0].String(), excludeSelf)
	}
	return types.Null, nil
}

func (c *ExecutionContext) sayToRoom(message string, excludeSelf bool) {
	if c.Player == nil {
		return
	}
	for _, obj := range c.Store.GetObjectsInLocation(c.Player.Location) {
		if excludeSelf && obj.ID == c.Player.ID {
			continue
		}
		c.notifyObjectID(obj.ID, message)
	}
}

// notifyObjectID dispatches to the named player's session, if online.
func (c *ExecutionContext) notifyObjectID(id types.ObjID, message string) {
	var session string
	for _, p := range c.Store.GetOnlinePlayers() {
		if p.ID == id {
			session = p.SessionHandle
			break
		}
	}
	if session == "" {
		return
	}
	c.CommandProcessor.SendToPlayer(message, session)
	if c.Logger != nil {
		c.Logger.Notify(id, message)
	}
}
