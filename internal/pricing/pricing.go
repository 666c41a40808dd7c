package pricing

import (
	"fmt"

	"github.com/mentorias-app/slots-service/internal/model"
)

// Session prices in ARS cents, keyed by modality and participant count.
// Fixed policy table; presencial sessions carry the room surcharge.
var table = map[model.Modality]map[int]int{
	model.ModalityVirtual: {
		1: 1500000,
		2: 2600000,
		3: 3600000,
	},
	model.ModalityPresencial: {
		1: 1800000,
		2: 3200000,
		3: 4500000,
	},
}

// MaxParticipants is the largest group size the price table covers.
const MaxParticipants = 3

// ForSession returns the price in cents for a session of the given modality
// and participant count.
func ForSession(modality model.Modality, participants int) (int, error) {
	byCount, ok := table[modality]
	if !ok {
		return 0, fmt.Errorf("no price for modality %q", modality)
	}
	price, ok := byCount[participants]
	if !ok {
		return 0, fmt.Errorf("no price for %d participants", participants)
	}
	return price, nil
}

// Format renders a price in cents as a display string.
func Format(cents int) string {
	if cents%100 == 0 {
		return fmt.Sprintf("$%.0f", float64(cents)/100)
	}
	return fmt.Sprintf("$%.2f", float64(cents)/100)
}
