// task/decision.go
package task

import "fmt"

// Decision is what a task wants done to its bound position this cycle.
// The set is closed: the manager dispatches on the concrete type.
type Decision interface {
	Description() string
}

// NoAction means the task found nothing to change.
type NoAction struct {
	Reason string
}

func (d *NoAction) Description() string {
	if d.Reason == "" {
		return "No action."
	}
	return "No action: " + d.Reason
}

// ModifyStop proposes a new stop-loss price for the position.
type ModifyStop struct {
	Price float64
}

func (d *ModifyStop) Description() string {
	return fmt.Sprintf("Modify stop-loss to %.5f", d.Price)
}

// ModifyTakeProfit proposes a new take-profit price for the position.
type ModifyTakeProfit struct {
	Price float64
}

func (d *ModifyTakeProfit) Description() string {
	return fmt.Sprintf("Modify take-profit to %.5f", d.Price)
}

// ClosePosition proposes closing the full position.
type ClosePosition struct{}

func (d *ClosePosition) Description() string {
	return "Close position"
}

// ClosePartial proposes closing part of the position.
type ClosePartial struct {
	Volume float64
}

func (d *ClosePartial) Description() string {
	return fmt.Sprintf("Close %.2f of position", d.Volume)
}
