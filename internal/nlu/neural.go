package nlu

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"github.com/BTreeMap/DialogCore/internal/models"
)

// NeuralGenerator produces scored candidate replies from the conversation
// history.
type NeuralGenerator interface {
	GenerateCandidates(ctx context.Context, history []string, userText string) ([]models.NeuralCandidate, error)
}

// NeuralFuture is the single per-turn neural request. It is started before
// the annotator join and may still be running when RGs read it.
type NeuralFuture struct {
	done  chan struct{}
	cands []models.NeuralCandidate
}

// StartNeural launches the request in the background.
func StartNeural(ctx context.Context, gen NeuralGenerator, req Request, timeout time.Duration) *NeuralFuture {
	f := &NeuralFuture{done: make(chan struct{})}
	go func() {
		defer close(f.done)
		cctx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()
		cands, err := gen.GenerateCandidates(cctx, req.History, req.Text)
		if err != nil {
			slog.Warn("NeuralFuture: generation failed", "conversation_id", req.ConversationID, "error", err)
			return
		}
		sort.SliceStable(cands, func(i, j int) bool { return cands[i].Score > cands[j].Score })
		f.cands = cands
	}()
	return f
}

// Candidates waits for the request and returns its candidates, best first.
func (f *NeuralFuture) Candidates() []models.NeuralCandidate {
	if f == nil {
		return nil
	}
	<-f.done
	return f.cands
}
