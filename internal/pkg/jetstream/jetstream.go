package jetstream

import (
	"strconv"

	"github.com/nats-io/nats.go"
)

// MessageID identifies a delivery by its consumer sequence, for log correlation.
func MessageID(msg *nats.Msg) string {
	meta, err := msg.Metadata()
	if err != nil {
		return "seq:unknown"
	}
	return "seq:" + strconv.FormatUint(meta.Sequence.Consumer, 10)
}
