package models

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"
)

// Document is a raw record as exported from the hosted document store.
// Older exports use a different field naming scheme; DecodeBookingDocument and
// DecodeBlockDocument are the only places that know about it.
type Document map[string]any

// field returns the first present key among names.
func (d Document) field(names ...string) (any, bool) {
	for _, n := range names {
		if v, ok := d[n]; ok && v != nil {
			return v, true
		}
	}
	return nil, false
}

func (d Document) str(names ...string) string {
	v, ok := d.field(names...)
	if !ok {
		return ""
	}
	switch s := v.(type) {
	case string:
		return s
	case fmt.Stringer:
		return s.String()
	default:
		return fmt.Sprint(v)
	}
}

func (d Document) num(names ...string) (float64, error) {
	v, ok := d.field(names...)
	if !ok {
		return 0, nil
	}
	switch n := v.(type) {
	case float64:
		return n, nil
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case json.Number:
		return n.Float64()
	default:
		return 0, fmt.Errorf("field %s: expected number, got %T", names[0], v)
	}
}

func (d Document) date(loc *time.Location, names ...string) (Date, error) {
	v, ok := d.field(names...)
	if !ok {
		return Date{}, nil
	}
	date, err := decodeDocumentDate(v, loc)
	if err != nil {
		return Date{}, fmt.Errorf("field %s: %w", names[0], err)
	}
	return date, nil
}

// decodeDocumentDate accepts YYYY-MM-DD, RFC 3339 strings, and
// {"seconds": n, "nanoseconds": n} timestamp objects. Anything carrying an
// instant is reduced to its calendar day in loc; YYYY-MM-DD is taken as is.
func decodeDocumentDate(v any, loc *time.Location) (Date, error) {
	switch t := v.(type) {
	case string:
		if len(t) == len(DateLayout) {
			return ParseDate(t)
		}
		parsed, err := time.Parse(time.RFC3339Nano, t)
		if err != nil {
			return Date{}, fmt.Errorf("unrecognized date %q", t)
		}
		return DateIn(parsed, loc), nil
	case map[string]any:
		secs, ok := t["seconds"]
		if !ok {
			secs, ok = t["_seconds"]
		}
		if !ok {
			return Date{}, fmt.Errorf("timestamp object without seconds")
		}
		f, ok := secs.(float64)
		if !ok {
			return Date{}, fmt.Errorf("timestamp seconds: expected number, got %T", secs)
		}
		return DateIn(time.Unix(int64(math.Floor(f)), 0), loc), nil
	case time.Time:
		return DateIn(t, loc), nil
	default:
		return Date{}, fmt.Errorf("unsupported date value %T", v)
	}
}

// DecodeBookingDocument maps either booking document shape to a Booking.
// Timestamps become calendar days in loc, the zone availability is judged in.
func DecodeBookingDocument(doc Document, loc *time.Location) (*Booking, error) {
	checkIn, err := doc.date(loc, "checkInDate", "startDate", "check_in_date")
	if err != nil {
		return nil, err
	}
	checkOut, err := doc.date(loc, "checkOutDate", "endDate", "check_out_date")
	if err != nil {
		return nil, err
	}
	guests, err := doc.num("guests", "numberOfGuests")
	if err != nil {
		return nil, err
	}
	price, err := doc.num("totalPrice", "totalAmount", "total_price")
	if err != nil {
		return nil, err
	}

	b := &Booking{
		ID:            doc.str("id", "_id"),
		CampID:        doc.str("campId", "camp_id", "campID"),
		GuestID:       doc.str("guestId", "userId", "user_id"),
		CheckInDate:   checkIn,
		CheckOutDate:  checkOut,
		Status:        BookingStatus(strings.ToLower(doc.str("status"))),
		Guests:        int(guests),
		TotalPrice:    price,
		PaymentMethod: strings.ToLower(doc.str("paymentMethod", "payment_method")),
	}

	if b.CampID == "" {
		return nil, fmt.Errorf("booking document %q has no camp id", b.ID)
	}
	if b.CheckInDate.IsZero() {
		return nil, fmt.Errorf("booking document %q has no check-in date", b.ID)
	}
	if b.Status == "" {
		b.Status = BookingStatusPending
	}
	if !ValidBookingStatus(b.Status) {
		return nil, fmt.Errorf("booking document %q has unknown status %q", b.ID, b.Status)
	}
	if b.PaymentMethod == "" {
		b.PaymentMethod = PaymentMethodCard
	}
	return b, nil
}

// DecodeBlockDocument maps either blocked-date document shape to a BlockedDateRange.
func DecodeBlockDocument(doc Document, loc *time.Location) (*BlockedDateRange, error) {
	start, err := doc.date(loc, "startDate", "start_date", "from")
	if err != nil {
		return nil, err
	}
	end, err := doc.date(loc, "endDate", "end_date", "to")
	if err != nil {
		return nil, err
	}

	r := &BlockedDateRange{
		ID:        doc.str("id", "_id"),
		CampID:    doc.str("campId", "camp_id", "campID"),
		HostID:    doc.str("hostId", "host_id", "ownerId"),
		StartDate: start,
		EndDate:   end,
		Reason:    doc.str("reason"),
		Category:  BlockCategory(strings.ToLower(doc.str("category"))),
		CreatedBy: doc.str("createdBy", "created_by"),
	}
	if notes := doc.str("notes"); notes != "" {
		r.Notes = &notes
	}
	if r.Category == "" {
		r.Category = BlockCategoryOther
	}
	if r.CampID == "" {
		return nil, fmt.Errorf("block document %q has no camp id", r.ID)
	}
	if err := r.Validate(); err != nil {
		return nil, fmt.Errorf("block document %q: %w", r.ID, err)
	}
	return r, nil
}
