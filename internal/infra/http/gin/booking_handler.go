package ginserver

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strings"

	gin "github.com/gin-gonic/gin"

	"tourbook/internal/app/commands"
	"tourbook/internal/app/dto"
	bookingapp "tourbook/internal/app/handlers/booking"
	"tourbook/internal/app/queries"
)

type BookingHandler struct {
	Commands commands.Bus
	Queries  queries.Bus
}

func (h BookingHandler) PackageContext(c *gin.Context) {
	q := bookingapp.GetPackageContextQuery{
		PackageID: c.Param("id"),
		OfferID:   c.Query("offer_id"),
	}
	res, err := queries.Ask[bookingapp.GetPackageContextQuery, dto.PackageContext](c.Request.Context(), h.Queries, q)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// HotelRooms accepts the current selection either as repeated selected
// params or as one comma separated list.
func (h BookingHandler) HotelRooms(c *gin.Context) {
	q := bookingapp.GetHotelRoomsQuery{
		HotelID:   c.Param("id"),
		PackageID: c.Query("package_id"),
		Guests:    c.Query("guests"),
		Selected:  splitParams(c.QueryArray("selected")),
	}
	res, err := queries.Ask[bookingapp.GetHotelRoomsQuery, dto.HotelRooms](c.Request.Context(), h.Queries, q)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

type quoteRequest struct {
	PackageID string   `json:"package_id"`
	OfferID   string   `json:"offer_id"`
	HotelID   string   `json:"hotel_id"`
	RoomIDs   []string `json:"room_ids"`
	GuideID   string   `json:"guide_id"`
	CheckIn   string   `json:"check_in"`
	CheckOut  string   `json:"check_out"`
}

func (h BookingHandler) Quote(c *gin.Context) {
	var req quoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	q := bookingapp.QuotePriceQuery(req)
	res, err := queries.Ask[bookingapp.QuotePriceQuery, dto.Quote](c.Request.Context(), h.Queries, q)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

type submitBookingRequest struct {
	RequestID    string    `json:"request_id"`
	PackageID    string    `json:"package_id"`
	OfferID      string    `json:"offer_id"`
	IncludeHotel bool      `json:"include_hotel"`
	HotelID      string    `json:"hotel_id"`
	RoomIDs      []string  `json:"room_ids"`
	GuideID      string    `json:"guide_id"`
	CheckIn      string    `json:"check_in"`
	CheckOut     string    `json:"check_out"`
	Guests       rawGuests `json:"guests"`
}

func (h BookingHandler) Submit(c *gin.Context) {
	var req submitBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	cmd := bookingapp.SubmitBookingCommand{
		RequestID:       req.RequestID,
		PackageID:       req.PackageID,
		OfferID:         req.OfferID,
		IncludeHotel:    req.IncludeHotel,
		HotelID:         req.HotelID,
		RoomIDs:         req.RoomIDs,
		GuideID:         req.GuideID,
		CheckIn:         req.CheckIn,
		CheckOut:        req.CheckOut,
		Guests:          string(req.Guests),
		IdempotencyKeyV: c.GetHeader("Idempotency-Key"),
	}
	res, err := commands.Dispatch[bookingapp.SubmitBookingCommand, *bookingapp.SubmitBookingResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, res)
}

// rawGuests keeps the guest count as typed. Clients send either a number or
// the text of the input field; parsing happens when the booking is composed.
type rawGuests string

func (g *rawGuests) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*g = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*g = rawGuests(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*g = rawGuests(n.String())
	return nil
}

func splitParams(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

var _ BookingHTTP = BookingHandler{}
