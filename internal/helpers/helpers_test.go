package helpers

import (
	"regexp"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGeneratePinCode(t *testing.T) {
	numeric := regexp.MustCompile(`^[0-9]+$`)

	for i := 0; i < 50; i++ {
		pin := GeneratePinCode(DefaultPinCodeSize)
		assert.Len(t, pin, 6)
		assert.Regexp(t, numeric, pin)
	}

	assert.Len(t, GeneratePinCode(4), 4)
	assert.Len(t, GeneratePinCode(0), DefaultPinCodeSize)
}

func TestGenerateOrderNum(t *testing.T) {
	num := GenerateOrderNum(time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC))
	assert.Len(t, num, 12)
	assert.Equal(t, "240501", num[:6])
}

func TestSlugify(t *testing.T) {
	assert.Equal(t, "spring-fest", Slugify("Spring Fest"))
	assert.Equal(t, "spring-fest", Slugify("  Spring   Fest! "))
	assert.Equal(t, "spring-fest-05012024", SlugWithDate("spring-fest", time.Date(2024, 5, 1, 18, 0, 0, 0, time.UTC)))
}

func TestSlugWithDateUsesUTC(t *testing.T) {
	eastern := time.FixedZone("UTC-5", -5*60*60)
	assert.Equal(t, "spring-fest-05022024", SlugWithDate("spring-fest", time.Date(2024, 5, 1, 23, 30, 0, 0, eastern)))
}

func TestQRSigner(t *testing.T) {
	signer := NewQRSigner("secret")
	ticketID, detailID := uuid.New(), uuid.New()

	payload := signer.Payload(ticketID, detailID)

	gotTicket, gotDetail, err := signer.Parse(payload)
	require.NoError(t, err)
	assert.Equal(t, ticketID, gotTicket)
	assert.Equal(t, detailID, gotDetail)

	_, _, err = NewQRSigner("other").Parse(payload)
	assert.Error(t, err)

	_, _, err = signer.Parse("ticket:abc")
	assert.Error(t, err)
}

func TestParsePagination(t *testing.T) {
	page, limit, err := ParsePagination("", "")
	require.NoError(t, err)
	assert.Equal(t, 1, page)
	assert.Equal(t, DefaultPageSize, limit)

	page, limit, err = ParsePagination("3", "500")
	require.NoError(t, err)
	assert.Equal(t, 3, page)
	assert.Equal(t, MaxPageSize, limit)

	_, _, err = ParsePagination("0", "10")
	assert.Error(t, err)
	_, _, err = ParsePagination("1", "x")
	assert.Error(t, err)
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2024-05-01")
	require.NoError(t, err)
	assert.Equal(t, time.May, d.Month())

	_, err = ParseDate("2024-05-01T10:00:00Z")
	assert.NoError(t, err)

	_, err = ParseDate("05/01/2024")
	assert.Error(t, err)
}
