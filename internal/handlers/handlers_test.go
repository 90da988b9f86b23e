package handlers

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	qt "github.com/frankban/quicktest"
	"github.com/golang-jwt/jwt/v5"
)

func TestTokenRoundTrip(t *testing.T) {
	c := qt.New(t)
	secret := []byte("s3cret")

	token, err := issueToken(42, secret, time.Hour)
	c.Assert(err, qt.IsNil)

	farmerID, err := farmerIDFromToken(token, secret)
	c.Assert(err, qt.IsNil)
	c.Assert(farmerID, qt.Equals, 42)

	_, err = farmerIDFromToken(token, []byte("other"))
	c.Assert(err, qt.IsNotNil)

	expired, err := issueToken(42, secret, -time.Minute)
	c.Assert(err, qt.IsNil)
	_, err = farmerIDFromToken(expired, secret)
	c.Assert(err, qt.IsNotNil)

	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{
		Subject:   "42",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	raw, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	c.Assert(err, qt.IsNil)
	_, err = farmerIDFromToken(raw, secret)
	c.Assert(err, qt.IsNotNil)
}

func TestFarmerIDFromContext(t *testing.T) {
	c := qt.New(t)

	_, ok := farmerIDFromContext(context.Background())
	c.Assert(ok, qt.IsFalse)

	farmerID, ok := farmerIDFromContext(withFarmerID(context.Background(), 9))
	c.Assert(ok, qt.IsTrue)
	c.Assert(farmerID, qt.Equals, 9)
}

func TestBearerToken(t *testing.T) {
	c := qt.New(t)
	tests := []struct {
		header string
		token  string
		ok     bool
	}{
		{header: "Bearer abc", token: "abc", ok: true},
		{header: "bearer  abc ", token: "abc", ok: true},
		{header: "", ok: false},
		{header: "Basic abc", ok: false},
		{header: "Bearer ", ok: false},
	}
	for _, test := range tests {
		req := httptest.NewRequest("GET", "/", nil)
		req.Header.Set("Authorization", test.header)
		token, err := bearerToken(req)
		if !test.ok {
			c.Assert(err, qt.IsNotNil, qt.Commentf("header %q", test.header))
			continue
		}
		c.Assert(err, qt.IsNil, qt.Commentf("header %q", test.header))
		c.Assert(token, qt.Equals, test.token)
	}
}

func TestParseDate(t *testing.T) {
	c := qt.New(t)

	date, err := parseDate("")
	c.Assert(err, qt.IsNil)
	c.Assert(date, qt.IsNil)

	date, err = parseDate(" 2024-03-09 ")
	c.Assert(err, qt.IsNil)
	c.Assert(date.Equal(time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC)), qt.IsTrue)

	date, err = parseDate("2024-03-09T10:00:00+02:00")
	c.Assert(err, qt.IsNil)
	c.Assert(date.Hour(), qt.Equals, 8)
	c.Assert(date.Location(), qt.Equals, time.UTC)

	_, err = parseDate("09.03.2024")
	c.Assert(err, qt.IsNotNil)
}

func TestParseReportParams(t *testing.T) {
	c := qt.New(t)

	params, err := parseReportParams(httptest.NewRequest("GET", "/?product=%20wheat%20&farmer_id=7", nil))
	c.Assert(err, qt.IsNil)
	c.Assert(params.Product, qt.Equals, "wheat")
	c.Assert(params.FarmerID, qt.Equals, 7)

	_, err = parseReportParams(httptest.NewRequest("GET", "/?farmer_id=-1", nil))
	c.Assert(err, qt.ErrorMatches, "invalid farmer_id")
}
