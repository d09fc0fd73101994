package cnst

const (
	// AppName is the canonical application name
	AppName = "portal-api"

	// UnknownActor is recorded when an audit entry has no resolved actor name
	UnknownActor = "usuário desconhecido"
)
