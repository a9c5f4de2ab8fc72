package app

import (
	"context"
	"fmt"
	"log"
	"strings"

	"claimsight/ai"
	"claimsight/domain/claims"
	"claimsight/ports"
)

// ChatService answers analyst questions. The system prompt carries the
// static dataset knowledge; when the user's view is filtered, a small live
// snapshot of their slice is appended so answers can cite what they are
// actually looking at.
type ChatService struct {
	client ai.ChatClient
	store  ports.ClaimStore
}

// NewChatService creates a chat service.
func NewChatService(client ai.ChatClient, store ports.ClaimStore) *ChatService {
	return &ChatService{client: client, store: store}
}

// Reply validates the request, assembles the layered system prompt, and
// forwards the conversation to the model.
func (s *ChatService) Reply(ctx context.Context, req ai.ChatRequest) (string, error) {
	if err := req.Validate(); err != nil {
		return "", fmt.Errorf("invalid chat request: %w", err)
	}

	system := ai.BuildSystemPrompt(req.Data)

	// Live data degrades silently: a snapshot failure never blocks the
	// chat, the model just answers from its static knowledge.
	if snap := s.liveSnapshot(ctx, req.Data); snap != "" {
		system += "\n\n" + snap
	}

	return s.client.Complete(ctx, system, req.Messages)
}

// liveSnapshot fetches KPIs and the top drugs for the user's filtered
// slice. Returns "" when the view is unfiltered or any query fails.
func (s *ChatService) liveSnapshot(ctx context.Context, data *ai.ChatContext) string {
	if data == nil || data.Filters == nil {
		return ""
	}
	f := chatFilterParams(data.Filters)
	if !f.HasDimension() {
		return ""
	}

	kpis, err := s.store.KpiSummary(ctx, f)
	if err != nil {
		log.Printf("[Chat] live KPI snapshot failed, continuing without: %v", err)
		return ""
	}
	drugs, err := s.store.TopDrugs(ctx, f)
	if err != nil {
		log.Printf("[Chat] live drug snapshot failed, continuing without: %v", err)
		return ""
	}

	var b strings.Builder
	b.WriteString("## Live Data for Current Filters\n")
	fmt.Fprintf(&b, "- Total claims: %s | Net claims: %s | Reversal rate: %.1f%% | Unique drugs: %s\n",
		claims.FormatNumber(kpis.TotalClaims), claims.FormatNumber(kpis.NetClaims),
		kpis.ReversalRate, claims.FormatNumber(kpis.UniqueDrugs))
	if len(drugs) > 0 {
		b.WriteString("- Top drugs in this slice:\n")
		for _, d := range drugs {
			fmt.Fprintf(&b, "  - %s: %s net claims (%.1f%% reversal)\n",
				d.DrugName, claims.FormatNumber(d.NetClaims), d.ReversalRate)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

// chatFilterParams maps chat-context filters onto the query filter set.
// Chat filters come from a client that already validated them against the
// dashboard's domains, so values are passed through the same normalizer to
// keep the fail-open defaults consistent.
func chatFilterParams(f *ai.ChatFilters) claims.FilterParams {
	raw := map[string]string{
		"state":        f.State,
		"formulary":    f.Formulary,
		"mony":         f.Mony,
		"manufacturer": f.Manufacturer,
		"drug":         f.Drug,
		"groupId":      f.GroupID,
		"dateStart":    f.DateStart,
		"dateEnd":      f.DateEnd,
	}
	for k, v := range raw {
		if v == "" {
			delete(raw, k)
		}
	}
	if f.IncludeFlaggedNdcs {
		raw["includeFlaggedNdcs"] = "true"
	}
	// Keep the snapshot tight; the model only needs the leaders.
	raw["limit"] = "5"
	return claims.Normalize(raw)
}
