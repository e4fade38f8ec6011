package commands

import "fmt"

type Result struct {
	Message string
}

type Handlers struct {
	Add     func(AddArgs) (Result, error)
	Sub     func(SubArgs) (Result, error)
	Done    func(TargetArgs) (Result, error)
	Undo    func(TargetArgs) (Result, error)
	Delete  func(TargetArgs) (Result, error)
	Suggest func(SuggestArgs) (Result, error)
	CheckIn func(CheckInArgs) (Result, error)
	List    func(ListArgs) (Result, error)
}

func missing(name string) error {
	return &CommandError{Code: ErrCodeHandlerMissing, Message: fmt.Sprintf("%s handler not configured", name)}
}

func Execute(cmd Command, handlers Handlers) (Result, error) {
	switch cmd.Type {
	case TypeAdd:
		if handlers.Add == nil {
			return Result{}, missing("add")
		}
		return handlers.Add(*cmd.Add)
	case TypeSub:
		if handlers.Sub == nil {
			return Result{}, missing("sub")
		}
		return handlers.Sub(*cmd.Sub)
	case TypeDone:
		if handlers.Done == nil {
			return Result{}, missing("done")
		}
		return handlers.Done(*cmd.Target)
	case TypeUndo:
		if handlers.Undo == nil {
			return Result{}, missing("undo")
		}
		return handlers.Undo(*cmd.Target)
	case TypeDelete:
		if handlers.Delete == nil {
			return Result{}, missing("del")
		}
		return handlers.Delete(*cmd.Target)
	case TypeSuggest:
		if handlers.Suggest == nil {
			return Result{}, missing("suggest")
		}
		return handlers.Suggest(*cmd.Suggest)
	case TypeCheckIn:
		if handlers.CheckIn == nil {
			return Result{}, missing("checkin")
		}
		return handlers.CheckIn(*cmd.CheckIn)
	case TypeList:
		if handlers.List == nil {
			return Result{}, missing("list")
		}
		return handlers.List(*cmd.List)
	default:
		return Result{}, &CommandError{Code: ErrCodeUnknownCommand, Message: fmt.Sprintf("unknown command type: %s", cmd.Type)}
	}
}
