// Package core is the importable face of kmodaudit for programs that want to
// audit kernel configs without shelling out to the CLI.
//
// Example:
//
//	rep, err := core.Audit("/usr/src/linux/.config", core.Options{})
//	if err != nil { /* handle */ }
//	_ = core.MarshalReports(os.Stdout, []core.Report{rep})
package core
