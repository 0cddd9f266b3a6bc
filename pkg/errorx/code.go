package errorx

type Code int

var Unknown = Error{Code: 100000, Message: "Request failed"}

const (
	// Common codes
	BadRequest       Code = 100001
	BadResponse      Code = 100002
	PermissionDenied Code = 100003
	NotFound         Code = 100004
	Unauthenticated  Code = 100005
	AlreadyExists    Code = 100006
	Internal         Code = 100007
	Unavailable      Code = 100008
	NotImplemented   Code = 100009
	TooManyRequests  Code = 100010

	// Transaction codes
	Conflict Code = 200001

	// Contract codes
	InvalidTransition            Code = 300001
	ContractNotActive            Code = 300002
	InsufficientAvailableBalance Code = 300003
	NotVerified                  Code = 300004

	// PIN codes
	Locked       Code = 400001
	IncorrectPin Code = 400002
	PinNotSet    Code = 400003

	// Reward pool codes
	PoolNotFound   Code = 500001
	CodeMismatch   Code = 500002
	PoolExpired    Code = 500003
	PoolDepleted   Code = 500004
	AlreadyClaimed Code = 500005
)
