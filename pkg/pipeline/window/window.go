// Package window trims conversation history to a serialized-size budget
// before it is sent to the generator. Dropped turns are not lost: they stay
// in the record the History Store persists.
package window

import (
	"encoding/json"

	"minima-be/internal/entity"
)

// Partition splits history into overflow and active so that the active suffix
// serializes under budgetBytes. Oldest messages are moved to overflow first;
// overflow followed by active always reconstructs history exactly. The loop
// terminates for any budget >= 0 because active eventually becomes empty.
//
// Partition operates on the pre-augmentation turn history only: the new user
// turn and synthetic retrieval messages are appended to active afterwards so
// they can never be evicted.
func Partition(history []entity.Message, budgetBytes int) (overflow, active []entity.Message) {
	active = make([]entity.Message, len(history))
	copy(active, history)

	for len(active) > 0 && serializedSize(active) > budgetBytes {
		overflow = append(overflow, active[0])
		active = active[1:]
	}
	return overflow, active
}

func serializedSize(messages []entity.Message) int {
	data, err := json.Marshal(messages)
	if err != nil {
		// Message content is always json-marshalable; treat a failure as an
		// oversized window so trimming keeps making progress.
		return int(^uint(0) >> 1)
	}
	return len(data)
}
