package verify

import (
	"context"
	"fmt"
	"strings"

	"github.com/qaops/backstop/types"
)

// Probe names one required package and the module imported to prove it
// is installed. The registry is static: no reflection, no dynamic
// discovery.
type Probe struct {
	Name       string
	ImportName string
}

// requiredPackages are the Python packages the backend suite depends
// on. factory_boy installs under the module name "factory".
var requiredPackages = []Probe{
	{Name: "pytest", ImportName: "pytest"},
	{Name: "requests", ImportName: "requests"},
	{Name: "responses", ImportName: "responses"},
	{Name: "factory_boy", ImportName: "factory"},
	{Name: "faker", ImportName: "faker"},
	{Name: "coverage", ImportName: "coverage"},
	{Name: "bandit", ImportName: "bandit"},
	{Name: "safety", ImportName: "safety"},
}

// probeOutcome is the tagged result of one package probe.
type probeOutcome struct {
	Probe     Probe
	Available bool
	Reason    string
}

// packagesCheck probes every required package. A missing package fails
// the check but never stops the remaining probes.
func packagesCheck(cfg Config) func(ctx context.Context) types.CheckResult {
	name := "Required Packages"
	return func(ctx context.Context) types.CheckResult {
		var missing []string
		for _, probe := range requiredPackages {
			outcome := runProbe(ctx, cfg, probe)
			if outcome.Available {
				cfg.Log.Debugw("Package installed", "package", probe.Name)
			} else {
				cfg.Log.Warnw("Package missing",
					"package", probe.Name, "reason", outcome.Reason)
				missing = append(missing, probe.Name)
			}
		}

		if len(missing) > 0 {
			return types.CheckResult{
				Name: name,
				Detail: fmt.Sprintf("missing packages: %s (install with: pip install %s)",
					strings.Join(missing, ", "), strings.Join(missing, " ")),
			}
		}
		return types.CheckResult{Name: name, Passed: true,
			Detail: fmt.Sprintf("%d packages installed", len(requiredPackages))}
	}
}

func runProbe(ctx context.Context, cfg Config, probe Probe) probeOutcome {
	captured := cfg.Invoker.RunCaptured(ctx,
		types.Command{
			Args:        []string{cfg.PythonBinary, "-c", "import " + probe.ImportName},
			Description: "Package probe " + probe.Name,
		}, ProbeTimeout)

	switch {
	case captured.LaunchErr != nil:
		return probeOutcome{Probe: probe,
			Reason: fmt.Sprintf("probe could not start: %v", captured.LaunchErr)}
	case captured.TimedOut:
		return probeOutcome{Probe: probe, Reason: "probe timed out"}
	case !captured.Success():
		reason := firstLine(captured.Output)
		if reason == "" {
			reason = fmt.Sprintf("import exited %d", captured.ExitCode)
		}
		return probeOutcome{Probe: probe, Reason: reason}
	default:
		return probeOutcome{Probe: probe, Available: true}
	}
}
