package ticketdb

type DB interface {
	Append(ticket Ticket) error
	List() ([]Ticket, error)
	Path() string
}
