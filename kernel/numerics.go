package kernel

// Numeric replies the kernel itself needs to emit to enforce registration
// and broadcast invariants. The full RFC-1459 numeric table belongs to the
// out-of-scope command dispatcher; this is only the subset the kernel's own
// NICK/USER/JOIN/PART/PRIVMSG handling touches.
const (
	rplWelcome        = 1
	errNoNicknameGiven = 431
	errNicknameInUse  = 433
	errNotRegistered  = 451
	errNeedMoreParams = 461
	errNoSuchChannel  = 403
	errNoSuchNick     = 401
)
