package recorder

import (
	"encoding/csv"
	"fmt"
	"log"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/saocarlos/refribot/order"
	"github.com/saocarlos/refribot/session"
)

const jobBufferSize = 64

var header = []string{
	"Phone",
	"Timestamp",
	"ReceivedMessage",
	"Flavors",
	"Quantities",
	"TotalValue",
	"PostalCode",
	"Shipping",
	"Notes",
}

var moneyPattern = regexp.MustCompile(`R\$\s*([\d,.]+)`)

// Entry is one finalized conversation queued for recording.
type Entry struct {
	Phone    string
	Stamp    time.Time
	Messages []session.Message
	Stage    session.Stage
}

// Recorder appends one CSV row per finalized-and-declined order. Writes run
// on a background goroutine so the closing reply never waits on disk; any
// persistence failure is logged and swallowed.
type Recorder struct {
	path string
	jobs chan Entry
	done chan struct{}
}

// New opens the CSV sink, creating the file with its header when absent,
// and starts the background writer.
func New(path string) (*Recorder, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		file, err := os.Create(path)
		if err != nil {
			return nil, fmt.Errorf("failed to create CSV file: %w", err)
		}
		w := csv.NewWriter(file)
		if err := w.Write(header); err != nil {
			file.Close()
			return nil, fmt.Errorf("failed to write CSV header: %w", err)
		}
		w.Flush()
		if err := file.Close(); err != nil {
			return nil, fmt.Errorf("failed to close CSV file: %w", err)
		}
	}

	r := &Recorder{
		path: path,
		jobs: make(chan Entry, jobBufferSize),
		done: make(chan struct{}),
	}
	go r.writePump()
	return r, nil
}

// Enqueue hands a finalized conversation to the background writer. It never
// blocks: when the queue is saturated the entry is dropped and logged,
// accepted best-effort behavior.
func (r *Recorder) Enqueue(phone string, stamp time.Time, msgs []session.Message, stage session.Stage) {
	entry := Entry{Phone: phone, Stamp: stamp, Messages: msgs, Stage: stage}
	select {
	case r.jobs <- entry:
	default:
		log.Printf("⚠️ Recorder queue full, dropping transcript for %s", phone)
	}
}

// Close drains outstanding jobs and stops the background writer.
func (r *Recorder) Close() {
	close(r.jobs)
	<-r.done
}

func (r *Recorder) writePump() {
	defer close(r.done)
	for entry := range r.jobs {
		if err := r.write(entry); err != nil {
			log.Printf("❌ Failed to record transcript for %s: %v", entry.Phone, err)
			continue
		}
		log.Printf("💾 Transcript recorded for %s", entry.Phone)
	}
}

// write builds the CSV row from the transcript and appends it. User
// messages are re-run through the extractor; monetary figures are scraped
// back out of the assistant messages. The scraped figures and the engine's
// own computation are independent paths and may disagree — the row is a
// best-effort record, not the source of truth.
func (r *Recorder) write(entry Entry) error {
	var (
		flavors    []string
		quantities []string
		userMsgs   []string
		cep        string
		total      float64
		shipping   string
	)

	for _, msg := range entry.Messages {
		switch msg.Role {
		case session.RoleUser:
			userMsgs = append(userMsgs, msg.Content)
			f, q, c := order.Extract(msg.Content)
			flavors = append(flavors, f...)
			quantities = append(quantities, q...)
			if c != "" {
				cep = c
			}
		case session.RoleAssistant:
			lower := strings.ToLower(msg.Content)
			if strings.Contains(lower, "valor total") {
				if v, ok := scrapeMoney(msg.Content); ok {
					total = v
				}
			}
			if strings.Contains(lower, "frete") {
				if v, ok := scrapeMoney(msg.Content); ok {
					shipping = strconv.FormatFloat(v, 'f', 2, 64)
				}
			}
		}
	}

	file, err := os.OpenFile(r.path, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer file.Close()

	w := csv.NewWriter(file)
	row := []string{
		entry.Phone,
		entry.Stamp.Format("2006-01-02 15:04:05"),
		strings.Join(userMsgs, "\n"),
		strings.Join(flavors, ", "),
		strings.Join(quantities, ", "),
		strconv.FormatFloat(total, 'f', 2, 64),
		cep,
		shipping,
		"Pedido em estado: " + string(entry.Stage),
	}
	if err := w.Write(row); err != nil {
		return fmt.Errorf("failed to write CSV row: %w", err)
	}
	w.Flush()
	return w.Error()
}

// scrapeMoney pulls the first "R$<number>" figure out of a message. A
// figure that fails to parse leaves the field unset.
func scrapeMoney(content string) (float64, bool) {
	m := moneyPattern.FindStringSubmatch(content)
	if m == nil {
		return 0, false
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", ""), 64)
	if err != nil {
		log.Printf("⚠️ Unparsable monetary figure %q", m[1])
		return 0, false
	}
	return v, true
}
