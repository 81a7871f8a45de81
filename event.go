package custody

import (
	"fmt"
	"strings"

	cmn "github.com/tendermint/tendermint/libs/common"
)

// Event is a notification emitted by a successful operation. It is
// delivered to tendermint as a set of tags, one per attribute, named
// "<type>.<key>".
type Event struct {
	Type       string
	Attributes []EventAttribute
}

// EventAttribute is a single key/value pair of an event.
type EventAttribute struct {
	Key   string
	Value string
}

// NewEvent returns an event with no attributes.
func NewEvent(typ string) Event {
	return Event{Type: typ}
}

// With returns a copy of the event with one more attribute. The value is
// rendered with its String method when available.
func (e Event) With(key string, value interface{}) Event {
	attrs := make([]EventAttribute, len(e.Attributes), len(e.Attributes)+1)
	copy(attrs, e.Attributes)
	e.Attributes = append(attrs, EventAttribute{Key: key, Value: fmt.Sprint(value)})
	return e
}

// Attr returns the value of the first attribute with the given key.
func (e Event) Attr(key string) (string, bool) {
	for _, a := range e.Attributes {
		if a.Key == key {
			return a.Value, true
		}
	}
	return "", false
}

// Tags renders the events as tendermint tags.
func Tags(events []Event) []cmn.KVPair {
	var tags []cmn.KVPair
	for _, e := range events {
		for _, a := range e.Attributes {
			tags = append(tags, cmn.KVPair{
				Key:   []byte(e.Type + "." + a.Key),
				Value: []byte(a.Value),
			})
		}
	}
	return tags
}

// ParseTags rebuilds the events from their tags. Consecutive tags of the
// same type are grouped into one event, until an attribute repeats.
func ParseTags(tags []cmn.KVPair) []Event {
	var events []Event
	for _, tag := range tags {
		key := string(tag.Key)
		i := strings.LastIndex(key, ".")
		if i <= 0 || i == len(key)-1 {
			continue
		}
		typ, attr := key[:i], key[i+1:]
		n := len(events)
		if n == 0 || events[n-1].Type != typ {
			events = append(events, NewEvent(typ))
			n++
		} else if _, ok := events[n-1].Attr(attr); ok {
			events = append(events, NewEvent(typ))
			n++
		}
		events[n-1] = events[n-1].With(attr, string(tag.Value))
	}
	return events
}
