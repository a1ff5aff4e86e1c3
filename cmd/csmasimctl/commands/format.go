package commands

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"text/tabwriter"
	"unicode"

	"github.com/iancoleman/strcase"

	"github.com/hcoa-iot/csmasim/internal/engine"
)

const (
	formatJSON  = "json"
	formatTable = "table"
)

// errUnsupportedFormat is returned when the requested output format is not supported.
var errUnsupportedFormat = errors.New("unsupported output format")

// simulationView is the output shape rendered for both local runs and
// daemon-backed requests.
type simulationView struct {
	Cached bool          `json:"cached"`
	Result engine.Result `json:"result"`
}

// formatSimulation renders a simulation outcome in the requested format.
func formatSimulation(result engine.Result, cached bool, format string) (string, error) {
	switch format {
	case formatJSON:
		return formatSimulationJSON(result, cached)
	case formatTable:
		return formatSimulationTable(result, cached), nil
	default:
		return "", fmt.Errorf("%w: %q", errUnsupportedFormat, format)
	}
}

func formatSimulationJSON(result engine.Result, cached bool) (string, error) {
	data, err := json.MarshalIndent(simulationView{Cached: cached, Result: result}, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal simulation to JSON: %w", err)
	}

	return string(data), nil
}

func formatSimulationTable(result engine.Result, cached bool) string {
	var buf strings.Builder
	w := tabwriter.NewWriter(&buf, 0, 0, 2, ' ', 0)

	fmt.Fprintf(w, "Cached:\t%t\n", cached)
	fmt.Fprintf(w, "Duration (ticks):\t%d\n", result.Duration)
	fmt.Fprintf(w, "Total Packets Generated:\t%d\n", result.Stats.TotalPacketsGenerated)
	fmt.Fprintf(w, "Max Queue Depth:\t%d\n", result.Stats.MaxQueueDepth)
	fmt.Fprintf(w, "Success Count:\t%d\n", result.Stats.SuccessCount)
	fmt.Fprintf(w, "%s:\t%d\n", humanizeLabel("Success1st"), result.Stats.Success1st)
	fmt.Fprintf(w, "%s:\t%d\n", humanizeLabel("Success2nd"), result.Stats.Success2nd)
	fmt.Fprintf(w, "%s:\t%d\n", humanizeLabel("Success3rd"), result.Stats.Success3rd)
	fmt.Fprintf(w, "Failure Count:\t%d\n", result.Stats.FailureCount)
	fmt.Fprintf(w, "Collision Count:\t%d\n", result.Stats.CollisionCount)
	fmt.Fprintf(w, "Total Latency (ticks):\t%d\n", result.Stats.TotalLatency)
	fmt.Fprintf(w, "Average Latency (ticks):\t%s\n", averageLatency(result.Stats))

	for _, bin := range []string{"ChannelIdleTicks", "ChannelTxTicks", "ChannelCollisionTicks", "ChannelBackoffTicks"} {
		fmt.Fprintf(w, "%s:\t%d\n", humanizeLabel(bin), channelTicks(result.Stats, bin))
	}

	if err := w.Flush(); err != nil {
		return fmt.Sprintf("format table: %v", err)
	}

	return buf.String()
}

// averageLatency computes the mean ticks-to-success across all successful
// deliveries. Outcome accounting lives entirely in engine.Stats; this
// division is a display-only derivation, not an engine concern.
func averageLatency(stats engine.Stats) string {
	if stats.SuccessCount == 0 {
		return "N/A"
	}

	return fmt.Sprintf("%.2f", float64(stats.TotalLatency)/float64(stats.SuccessCount))
}

func channelTicks(stats engine.Stats, field string) int {
	switch field {
	case "ChannelIdleTicks":
		return stats.ChannelIdleTicks
	case "ChannelTxTicks":
		return stats.ChannelTxTicks
	case "ChannelCollisionTicks":
		return stats.ChannelCollisionTicks
	case "ChannelBackoffTicks":
		return stats.ChannelBackoffTicks
	default:
		return 0
	}
}

// humanizeLabel turns a Go identifier like "ChannelIdleTicks" into a
// title-cased label like "Channel Idle Ticks" for table output.
func humanizeLabel(name string) string {
	words := strings.Split(strcase.ToDelimited(name, ' '), " ")
	for i, word := range words {
		if word == "" {
			continue
		}
		r := []rune(word)
		r[0] = unicode.ToUpper(r[0])
		words[i] = string(r)
	}

	return strings.Join(words, " ")
}
