package cache

// TryLock and Unlock expose the platform lock primitives for tests.
var (
	TryLock = tryLock
	Unlock  = unlock
)
