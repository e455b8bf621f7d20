package player

const (
	PlayerState__NOT_LOGGED_IN = "not-logged-in"
	PlayerState__LOGGED_IN     = "logged-in"
	PlayerState__JOINING       = "joining"
	PlayerState__IN_GAME       = "in-game"
	PlayerState__ERROR         = "error"
)

const (
	PlayerEvent__LOGIN  = "login"
	PlayerEvent__JOIN   = "join"
	PlayerEvent__JOINED = "joined"
	PlayerEvent__FAIL   = "fail"
	PlayerEvent__LEAVE  = "leave"
)
