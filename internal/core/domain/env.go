package domain

// GuardEnvVar marks a process as running inside an orchestrated build script.
const GuardEnvVar = "MONORUN_ORCHESTRATED"

// GuardEnvValue is the sentinel value of GuardEnvVar.
const GuardEnvValue = "true"

// IsOrchestrated reports whether the recursion guard is set in the environment read by getenv.
func IsOrchestrated(getenv func(string) string) bool {
	return getenv(GuardEnvVar) == GuardEnvValue
}

// GuardEnv returns the KEY=VALUE pair injected into every build script environment.
func GuardEnv() string {
	return GuardEnvVar + "=" + GuardEnvValue
}
