// Package agent implements the dialogue controller: it owns per-session
// conversation state and drives the LLM call / function-dispatch loop.
package agent

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"github.com/tsagbook/booking-platform/internal/functions"
	"github.com/tsagbook/booking-platform/internal/llm"
	"github.com/tsagbook/booking-platform/pkg/logger"
)

// maxRoundTrips bounds LLM round-trips per user message.
const maxRoundTrips = 5

// fallbackMessage is returned when the round-trip bound is exhausted.
const fallbackMessage = "Уучлаарай, би таны хүсэлтийг боловсруулж чадсангүй. Дахин оролдоно уу."

// adapterErrorMessage is returned on LLM adapter failure. The underlying
// cause goes to the server log only.
const adapterErrorMessage = "Уучлаарай, түр зуурын алдаа гарлаа. Дахин оролдоно уу."

// systemPrompt carries the fixed task instructions, in Mongolian to match
// the end-user channel.
const systemPrompt = `Та мэргэжлийн цаг захиалгын туслах ассистент мөн. Таны үүрэг:

1. ХЭРЭГЛЭГЧИЙН ХҮСЭЛТИЙГ ОЙЛГОХ:
   - Шинэ захиалга үүсгэх
   - Захиалга цуцлах
   - Захиалга шалгах
   - Захиалга өөрчлөх

2. МЭДЭЭЛЭЛ ЦУГЛУУЛАХ:
   - Үйлчилгээний төрөл (үс засалт, шүдний үзлэг гэх мэт)
   - Огноо ба цаг
   - Хэрэглэгчийн нэр
   - Утасны дугаар

3. ЗАХИАЛГЫГ ШАЛГАХ:
   - Сул байгаа эсэхийг шалгах
   - Зөрчилдөөн байвал өөр цагийг санал болгох
   - Хэрэглэгчийн зөвшөөрөл авах

4. БАТАЛГААЖУУЛАХ:
   - Амжилттай бол батлагаажуулах мэдээлэл өгөх
   - Захиалгын дугаарыг өгөх

Та үргэлж ээлдэг, тодорхой, Монгол хэлээр хариулна. Хэрэв мэдээлэл дутуу бол асуулт асуух.

Та дараах функцүүдийг ашиглаж болно:
- check_availability: Цаг сул эсэхийг шалгах
- create_booking: Захиалга үүсгэх
- cancel_booking: Захиалга цуцлах
- list_bookings: Захиалгуудыг харах
- suggest_alternatives: Өөр цагийн сонголтуудыг санал болгох`

// Agent drives conversational booking. It depends on the language-model
// port, the function registry, and an injected session store.
type Agent struct {
	client   llm.Client
	registry *functions.Registry
	sessions SessionStore
	logger   *logger.Logger
}

// New creates a dialogue controller.
func New(client llm.Client, registry *functions.Registry, sessions SessionStore, log *logger.Logger) *Agent {
	return &Agent{
		client:   client,
		registry: registry,
		sessions: sessions,
		logger:   log,
	}
}

// ProcessMessage runs the dialogue loop for one user message and returns
// the assistant's reply. It never fails: every failure mode degrades to a
// user-visible string. The caller is expected to serialize messages per
// session id.
func (a *Agent) ProcessMessage(ctx context.Context, userMessage, userID, sessionID string) string {
	if sessionID == "" {
		sessionID = userID
	}
	log := a.logger.WithSession(sessionID, userID)

	if _, ok := a.sessions.History(sessionID); !ok {
		a.sessions.Append(sessionID, llm.Message{Role: llm.RoleSystem, Content: systemPrompt})
	}
	a.sessions.Append(sessionID, llm.Message{Role: llm.RoleUser, Content: userMessage})

	for i := 0; i < maxRoundTrips; i++ {
		history, _ := a.sessions.History(sessionID)

		result, err := a.client.Generate(ctx, &llm.GenerateRequest{
			Messages: history,
			Tools:    a.registry.Declarations(),
		})
		if err != nil {
			// Adapter errors are terminal for this message and are not
			// recorded as assistant turns.
			log.Error("llm adapter failure", zap.Error(err), zap.Int("round_trip", i+1))
			return adapterErrorMessage
		}

		switch result.Type {
		case llm.ResultFunctionCall:
			call := result.Call
			injectUserID(call.Arguments, userID)

			dispatched := a.registry.Dispatch(ctx, call.Name, call.Arguments)
			resultJSON, err := json.Marshal(dispatched)
			if err != nil {
				resultJSON = []byte(`{"error":"unserializable_result"}`)
			}

			a.sessions.Append(sessionID,
				llm.Message{
					Role:         llm.RoleAssistant,
					FunctionCall: &llm.FunctionCall{Name: call.Name, Arguments: call.Arguments},
				},
				llm.Message{
					Role:    llm.RoleFunction,
					Name:    call.Name,
					Content: string(resultJSON),
				},
			)
			log.Debug("function dispatched",
				zap.String("function", call.Name), zap.Int("round_trip", i+1))

		case llm.ResultText:
			a.sessions.Append(sessionID, llm.Message{Role: llm.RoleAssistant, Content: result.Content})
			return result.Content
		}
	}

	// Bound exhausted. Partial function-call turns stay in the
	// transcript; the next user message continues from them.
	log.Warn("dialogue round-trip bound exhausted")
	return fallbackMessage
}

// ClearHistory discards a session's transcript. A later message for the
// same id re-seeds the system prompt.
func (a *Agent) ClearHistory(sessionID string) {
	a.sessions.Clear(sessionID)
}

// injectUserID fills in the caller-supplied user id when the model left a
// declared user_id argument empty. The model is not trusted to supply it.
func injectUserID(args map[string]any, userID string) {
	v, declared := args["user_id"]
	if !declared {
		return
	}
	if s, ok := v.(string); !ok || s == "" {
		args["user_id"] = userID
	}
}
