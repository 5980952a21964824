package bookings

type Status string

const (
	StatusConfirmed Status = "CONFIRMED"
	StatusCancelled Status = "CANCELLED"
)

const (
	PaymentStatusCompleted = "COMPLETED"
)

func (s Status) String() string {
	return string(s)
}
