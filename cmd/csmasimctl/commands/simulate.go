package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/hcoa-iot/csmasim/internal/engine"
)

// errSimulateFailed wraps non-2xx responses from the daemon's simulate endpoint.
var errSimulateFailed = errors.New("simulate request failed")

type simulateRequestBody struct {
	Config simulateConfigBody `json:"config"`
	Seed   uint64             `json:"seed"`
}

type simulateConfigBody struct {
	SimDuration      int     `json:"sim_duration"`
	NodeCount        int     `json:"node_count"`
	DataSlots        int     `json:"data_slots"`
	CollisionPenalty int     `json:"collision_penalty"`
	Pe               int     `json:"pe"`
	MinBe            int     `json:"min_be"`
	MaxBe            int     `json:"max_be"`
	MaxNb            int     `json:"max_nb"`
	PacketGenMode    string  `json:"packet_gen_mode"`
	PacketProb       float64 `json:"packet_prob"`
	PacketInterval   int     `json:"packet_interval"`
	SlotDurationUs   int     `json:"slot_duration_us"`
}

type simulateResponseBody struct {
	Result engine.Result `json:"result"`
	Cached bool          `json:"cached"`
}

func simulateCmd() *cobra.Command {
	var p engineParams

	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Run a simulation against a running csmasimd daemon",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			body := simulateRequestBody{
				Config: simulateConfigBody{
					SimDuration:      p.simDuration,
					NodeCount:        p.nodeCount,
					DataSlots:        p.dataSlots,
					CollisionPenalty: p.collisionPenalty,
					Pe:               p.pe,
					MinBe:            p.minBe,
					MaxBe:            p.maxBe,
					MaxNb:            p.maxNb,
					PacketGenMode:    p.packetGenMode,
					PacketProb:       p.packetProb,
					PacketInterval:   p.packetInterval,
					SlotDurationUs:   p.slotDurationUs,
				},
				Seed: p.seed,
			}

			result, cached, err := postSimulate(cmd.Context(), serverAddr, body)
			if err != nil {
				return fmt.Errorf("simulate: %w", err)
			}

			out, err := formatSimulation(result, cached, outputFormat)
			if err != nil {
				return fmt.Errorf("format simulation: %w", err)
			}

			fmt.Fprint(cmd.OutOrStdout(), out)

			return nil
		},
	}

	registerEngineFlags(cmd, &p)

	return cmd
}

func postSimulate(ctx context.Context, addr string, body simulateRequestBody) (engine.Result, bool, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return engine.Result{}, false, fmt.Errorf("marshal request: %w", err)
	}

	url := "http://" + addr + "/v1/simulate"

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return engine.Result{}, false, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := httpClient.Do(req)
	if err != nil {
		return engine.Result{}, false, fmt.Errorf("send request to %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(resp.Body)
		return engine.Result{}, false, fmt.Errorf("%w: %s: %s", errSimulateFailed, resp.Status, string(msg))
	}

	var out simulateResponseBody
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return engine.Result{}, false, fmt.Errorf("decode response: %w", err)
	}

	return out.Result, out.Cached, nil
}
