package cli

var (
	Version   = ""
	CommitSHA = ""
)

// Globals defines global flags available to all commands.
type Globals struct {
	Telemetry bool `help:"Show timing telemetry for operations."`
}

type Commands struct {
	Globals

	Check CheckCmd `cmd:"" help:"Validate a loan application request against a product snapshot."`
	New   NewCmd   `cmd:"" help:"Interactively scaffold a loan application request."`
}
