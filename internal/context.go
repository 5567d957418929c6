package internal

type ctxKey string

// ContextUserKey is where the auth middleware stores the resolved caller.
const ContextUserKey ctxKey = "user"
