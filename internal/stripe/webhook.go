package stripe

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// EventTypePaymentSucceeded is the event the confirmation handler acts on.
const EventTypePaymentSucceeded = "payment_intent.succeeded"

// Event is a webhook notification from the processor.
type Event struct {
	ID   string    `json:"id"`
	Type string    `json:"type"`
	Data EventData `json:"data"`
}

type EventData struct {
	Object Intent `json:"object"`
}

var (
	ErrInvalidSignatureHeader = errors.New("stripe: invalid signature header")
	ErrSignatureMismatch      = errors.New("stripe: signature mismatch")
	ErrTimestampTooOld        = errors.New("stripe: webhook timestamp outside tolerance")
)

// signatureTolerance bounds how stale a signed timestamp may be before
// the event is rejected as a possible replay.
const signatureTolerance = 5 * time.Minute

// ConstructEvent verifies the signature header against the raw payload
// and the shared signing secret, then parses the event. Nothing in the
// payload may be trusted before this returns nil error.
//
// The header format is "t=<unix>,v1=<hex hmac>[,v1=...]"; the signed
// message is "<unix>.<payload>" and the MAC is HMAC-SHA256 keyed with the
// endpoint secret.
func ConstructEvent(payload []byte, sigHeader, secret string) (Event, error) {
	var event Event

	timestamp, sigs, err := parseSignatureHeader(sigHeader)
	if err != nil {
		return event, err
	}

	if time.Since(time.Unix(timestamp, 0)) > signatureTolerance {
		return event, ErrTimestampTooOld
	}

	expected := computeSignature(timestamp, payload, secret)
	ok := false
	for _, sig := range sigs {
		decoded, err := hex.DecodeString(sig)
		if err != nil {
			continue
		}
		if hmac.Equal(decoded, expected) {
			ok = true
			break
		}
	}
	if !ok {
		return event, ErrSignatureMismatch
	}

	if err := json.Unmarshal(payload, &event); err != nil {
		return event, fmt.Errorf("stripe: parse event: %w", err)
	}
	return event, nil
}

// SignPayload produces a valid signature header for a payload. The
// processor does this on its side; it is exported for test servers and
// local webhook replay tooling.
func SignPayload(payload []byte, secret string, at time.Time) string {
	sig := computeSignature(at.Unix(), payload, secret)
	return fmt.Sprintf("t=%d,v1=%s", at.Unix(), hex.EncodeToString(sig))
}

func computeSignature(timestamp int64, payload []byte, secret string) []byte {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(strconv.FormatInt(timestamp, 10)))
	mac.Write([]byte("."))
	mac.Write(payload)
	return mac.Sum(nil)
}

func parseSignatureHeader(header string) (int64, []string, error) {
	if header == "" {
		return 0, nil, ErrInvalidSignatureHeader
	}

	var timestamp int64 = -1
	var sigs []string
	for _, pair := range strings.Split(header, ",") {
		parts := strings.SplitN(pair, "=", 2)
		if len(parts) != 2 {
			return 0, nil, ErrInvalidSignatureHeader
		}
		switch parts[0] {
		case "t":
			t, err := strconv.ParseInt(parts[1], 10, 64)
			if err != nil {
				return 0, nil, ErrInvalidSignatureHeader
			}
			timestamp = t
		case "v1":
			sigs = append(sigs, parts[1])
		}
	}
	if timestamp < 0 || len(sigs) == 0 {
		return 0, nil, ErrInvalidSignatureHeader
	}
	return timestamp, sigs, nil
}
