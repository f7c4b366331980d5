package flow

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/saocarlos/refribot/order"
	"github.com/saocarlos/refribot/session"
)

// Completer produces the assistant's next line from a transcript that ends
// with the latest user message. Implementations must not return errors;
// the Gemini gateway degrades to a fixed apology on failure.
type Completer interface {
	Reply(ctx context.Context, history []session.Message) string
}

// Sink receives finalized conversations for durable recording. Enqueue must
// not block the caller; recording is best-effort relative to the reply.
type Sink interface {
	Enqueue(phone string, stamp time.Time, msgs []session.Message, stage session.Stage)
}

// Fixed replies of the sales flow. The engine owns the stage semantics; the
// completion service only fills the open-ended turns.
const (
	replyAskFlavor      = "Qual sabor de refrigerante você gostaria? 😊 (Uva, Limão, Guaraná ou Laranja)"
	replyAskQuantity    = "Quantas unidades de cada sabor você gostaria? 😉"
	replyAskCEP         = "Qual o seu CEP para calcular o frete? 😉"
	replyAskPayment     = "Qual a forma de pagamento? (Dinheiro, Pix, Cartão) 💳"
	replyInvalidCEP     = "Por favor, informe um CEP válido. 😉"
	replyInvalidPayment = "Por favor, informe a forma de pagamento (Dinheiro, Pix, Cartão). 😉"
	replyRepeatOrder    = "Gostaria de fazer outro pedido? 😊"
	replyClosing        = "✅ Pedido finalizado. Obrigado! 😊"
	replyAck            = "Agradecemos seu pedido! 😉"
	replyBusy           = "No momento estamos com muitos atendimentos. Tente novamente em instantes. 🙏"
)

// paymentMethods maps accepted keywords to the canonical label recorded on
// the order. Unaccented spellings are accepted too.
var paymentMethods = []struct {
	keyword string
	label   string
}{
	{"dinheiro", "Dinheiro"},
	{"pix", "Pix"},
	{"cartão", "Cartão"},
	{"cartao", "Cartão"},
}

// Engine is the conversation state machine. Given an inbound message it
// advances the customer's session one stage and produces the reply.
type Engine struct {
	store     *session.Store
	completer Completer
	sink      Sink
}

// NewEngine wires the state machine to its collaborators.
func NewEngine(store *session.Store, completer Completer, sink Sink) *Engine {
	return &Engine{
		store:     store,
		completer: completer,
		sink:      sink,
	}
}

// HandleMessage runs one conversation turn: load or create the session,
// append the user message, advance the state machine and append the reply.
// The session lock is held for the whole turn, so two messages from the
// same customer can never interleave their writes.
func (e *Engine) HandleMessage(ctx context.Context, phone, body string) string {
	sess, created, err := e.store.GetOrCreate(ctx, phone)
	if err != nil {
		log.Printf("⚠️ Could not open session for %s: %v", phone, err)
		return replyBusy
	}
	if created {
		log.Printf("✅ New session for %s", phone)
	}

	sess.Lock()
	defer sess.Unlock()

	sess.Append(session.RoleUser, body)

	reply, closed := e.advance(ctx, sess, body)
	if closed {
		// Terminal branch: record the transcript and evict the session.
		// The reply goes back to the transport without waiting on the sink.
		e.sink.Enqueue(phone, time.Now(), sess.Snapshot(), sess.Stage)
		e.store.Remove(ctx, phone)
		log.Printf("🧾 Order closed for %s", phone)
		return reply
	}

	sess.Append(session.RoleAssistant, reply)
	return reply
}

// advance dispatches on the current stage and mutates the session in place.
// The second return value reports the terminal branch: the customer declined
// a repeat order and the session is to be recorded and destroyed.
func (e *Engine) advance(ctx context.Context, sess *session.Session, body string) (string, bool) {
	switch sess.Stage {
	case session.StageStart:
		// Intent detection is delegated to the completion service: if its
		// reply already talks flavors, the customer named one.
		reply := e.completer.Reply(ctx, sess.Messages)
		if order.MentionsFlavor(reply) {
			flavors, quantities, _ := order.Extract(body)
			sess.Order.Flavors = append(sess.Order.Flavors, flavors...)
			sess.Order.Quantities = append(sess.Order.Quantities, quantities...)
			sess.Stage = session.StageAskQuantity
		} else {
			sess.Stage = session.StageAskFlavor
		}
		return reply, false

	case session.StageAskFlavor:
		flavors, _, _ := order.Extract(body)
		if len(flavors) == 0 {
			return replyAskFlavor, false
		}
		sess.Order.Flavors = append(sess.Order.Flavors, flavors...)
		sess.Stage = session.StageAskQuantity
		return e.completer.Reply(ctx, sess.Messages), false

	case session.StageAskQuantity:
		_, quantities, _ := order.Extract(body)
		if len(quantities) == 0 {
			return replyAskQuantity, false
		}
		sess.Order.Quantities = append(sess.Order.Quantities, quantities...)
		sess.Stage = session.StageAskCEP
		return replyAskCEP, false

	case session.StageAskCEP:
		_, _, cep := order.Extract(body)
		if cep == "" {
			return replyInvalidCEP, false
		}
		sess.Order.CEP = cep
		sess.Stage = session.StageAskPayment
		return replyAskPayment, false

	case session.StageAskPayment:
		method, ok := matchPayment(body)
		if !ok {
			return replyInvalidPayment, false
		}
		sess.Order.Payment = method
		sess.Stage = session.StageFinalized
		return renderSummary(&sess.Order), false

	case session.StageSummary:
		// Summary is only rendered once a payment method is on the order.
		sess.Stage = session.StageFinalized
		return renderSummary(&sess.Order), false

	case session.StageFinalized:
		lower := strings.ToLower(body)
		switch {
		case strings.Contains(lower, "sim"):
			sess.Reset()
			return replyRepeatOrder, false
		case strings.Contains(lower, "não"), strings.Contains(lower, "nao"):
			return replyClosing, true
		default:
			return replyAck, false
		}
	}

	return replyAck, false
}

func matchPayment(body string) (string, bool) {
	lower := strings.ToLower(body)
	for _, pm := range paymentMethods {
		if strings.Contains(lower, pm.keyword) {
			return pm.label, true
		}
	}
	return "", false
}
