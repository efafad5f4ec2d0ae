package command

import gocmd "github.com/goliatone/go-command"

var (
	_ gocmd.Commander[StartAuthorizationMessage] = (*StartAuthorizationCommand)(nil)
	_ gocmd.Commander[WaitAuthorizationMessage]  = (*WaitAuthorizationCommand)(nil)
	_ gocmd.Commander[CompleteCallbackMessage]   = (*CompleteCallbackCommand)(nil)
	_ gocmd.Commander[RefreshMessage]            = (*RefreshCommand)(nil)
	_ gocmd.Commander[RevokeMessage]             = (*RevokeCommand)(nil)
	_ gocmd.Commander[InvokeToolMessage]         = (*InvokeToolCommand)(nil)
)
