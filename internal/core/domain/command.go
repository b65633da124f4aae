package domain

// Command is an out-of-process invocation: argv, working directory, and extra environment.
type Command struct {
	// Args is the argv; Args[0] is resolved against PATH.
	Args []string

	// Dir is the working directory. Empty means the current directory.
	Dir string

	// Env is appended to the inherited process environment as KEY=VALUE pairs.
	Env []string
}
