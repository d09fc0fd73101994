package i18n

// Common errors
var (
	ErrNotFound       = NewErrorWithCode("ErrorResourceNotFound", ErrorNotFound)
	ErrUnauthorized   = NewErrorWithCode("ErrorUnauthorized", ErrorUnauthorized)
	ErrForbidden      = NewErrorWithCode("ErrorForbidden", ErrorForbidden)
	ErrBadRequest     = NewErrorWithCode("ErrorBadRequest", ErrorBadRequest)
	ErrInternalServer = NewErrorWithCode("ErrorInternalServer", ErrorInternalServer)
)

// Authentication and account errors
var (
	ErrorUserNotFound         = NewErrorWithCode("ErrorUserNotFound", ErrorNotFound)
	ErrorInvalidCredentials   = NewErrorWithCode("ErrorInvalidCredentials", ErrorUnauthorized)
	ErrorTokenExpired         = NewErrorWithCode("ErrorTokenExpired", ErrorUnauthorized)
	ErrorTokenInvalid         = NewErrorWithCode("ErrorTokenInvalid", ErrorUnauthorized)
	ErrorTokenMissing         = NewErrorWithCode("ErrorTokenMissing", ErrorUnauthorized)
	ErrorInvalidOldPassword   = NewErrorWithCode("ErrorInvalidOldPassword", ErrorForbidden)
	ErrorEmailExists          = NewErrorWithCode("ErrorEmailExists", ErrorConflict)
	ErrorCPFExists            = NewErrorWithCode("ErrorCPFExists", ErrorConflict)
	ErrorInvalidEmail         = NewErrorWithCode("ErrorInvalidEmail", ErrorBadRequest)
	ErrorInvalidCPF           = NewErrorWithCode("ErrorInvalidCPF", ErrorBadRequest)
	ErrorInvalidRole          = NewErrorWithCode("ErrorInvalidRole", ErrorBadRequest)
	ErrorElevatedAccount      = NewErrorWithCode("ErrorElevatedAccount", ErrorForbidden)
	ErrorRequiredFields       = NewErrorWithCode("ErrorRequiredFields", ErrorBadRequest)
	ErrorResetTokenInvalid    = NewErrorWithCode("ErrorResetTokenInvalid", ErrorBadRequest)
	ErrorMailUnavailable      = NewErrorWithCode("ErrorMailUnavailable", ErrorServiceUnavailable)
	ErrorRefreshTokenRequired = NewErrorWithCode("ErrorRefreshTokenRequired", ErrorBadRequest)
)

// City errors
var (
	ErrorCityNotFound     = NewErrorWithCode("ErrorCityNotFound", ErrorNotFound)
	ErrorCityNameRequired = NewErrorWithCode("ErrorCityNameRequired", ErrorBadRequest)
	ErrorCityNameExists   = NewErrorWithCode("ErrorCityNameExists", ErrorConflict)
	ErrorCityForbidden    = NewErrorWithCode("ErrorCityForbidden", ErrorForbidden)
)

// Menu errors
var (
	ErrorMenuNotFound         = NewErrorWithCode("ErrorMenuNotFound", ErrorNotFound)
	ErrorMenuRequiredFields   = NewErrorWithCode("ErrorMenuRequiredFields", ErrorBadRequest)
	ErrorMenuTypeNotFound     = NewErrorWithCode("ErrorMenuTypeNotFound", ErrorNotFound)
	ErrorMenuTypeNameRequired = NewErrorWithCode("ErrorMenuTypeNameRequired", ErrorBadRequest)
	ErrorMenuTypeNameExists   = NewErrorWithCode("ErrorMenuTypeNameExists", ErrorConflict)
)

// Announcement errors
var (
	ErrorAnnouncementNotFound       = NewErrorWithCode("ErrorAnnouncementNotFound", ErrorNotFound)
	ErrorAnnouncementRequiredFields = NewErrorWithCode("ErrorAnnouncementRequiredFields", ErrorBadRequest)
	ErrorAnnouncementForbidden      = NewErrorWithCode("ErrorAnnouncementForbidden", ErrorForbidden)
)

// Audit log errors
var (
	ErrorLogInvalidAction = NewErrorWithCode("ErrorLogInvalidAction", ErrorBadRequest)
	ErrorLogInvalidModule = NewErrorWithCode("ErrorLogInvalidModule", ErrorBadRequest)
)

// Account success messages
const (
	SuccessLogin            = "SuccessLogin"
	SuccessRegister         = "SuccessRegister"
	SuccessTokenRefreshed   = "SuccessTokenRefreshed"
	SuccessPasswordChanged  = "SuccessPasswordChanged"
	SuccessRecoveryMailSent = "SuccessRecoveryMailSent"
	SuccessPasswordReset    = "SuccessPasswordReset"
	SuccessUserCreated      = "SuccessUserCreated"
	SuccessUserUpdated      = "SuccessUserUpdated"
	SuccessUserDeleted      = "SuccessUserDeleted"
	SuccessUserInfo         = "SuccessUserInfo"
	SuccessUserList         = "SuccessUserList"
)

// City success messages
const (
	SuccessCityCreated = "SuccessCityCreated"
	SuccessCityUpdated = "SuccessCityUpdated"
	SuccessCityDeleted = "SuccessCityDeleted"
	SuccessCityList    = "SuccessCityList"
)

// Menu success messages
const (
	SuccessMenuCreated     = "SuccessMenuCreated"
	SuccessMenuUpdated     = "SuccessMenuUpdated"
	SuccessMenuDeleted     = "SuccessMenuDeleted"
	SuccessMenuList        = "SuccessMenuList"
	SuccessMenuInfo        = "SuccessMenuInfo"
	SuccessMenuTypeCreated = "SuccessMenuTypeCreated"
	SuccessMenuTypeUpdated = "SuccessMenuTypeUpdated"
	SuccessMenuTypeDeleted = "SuccessMenuTypeDeleted"
	SuccessMenuTypeList    = "SuccessMenuTypeList"
)

// Announcement success messages
const (
	SuccessAnnouncementCreated = "SuccessAnnouncementCreated"
	SuccessAnnouncementUpdated = "SuccessAnnouncementUpdated"
	SuccessAnnouncementDeleted = "SuccessAnnouncementDeleted"
	SuccessAnnouncementList    = "SuccessAnnouncementList"
)

// Audit log success messages
const (
	SuccessLogRecorded    = "SuccessLogRecorded"
	SuccessLogList        = "SuccessLogList"
	SuccessLogListCleared = "SuccessLogListCleared"
)
