package delivery

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/mascotienda/backend-tienda/internal/geo"
)

// Region discriminates how an order is delivered: by the store's own courier
// inside Lima Metropolitana, or by a third-party agency elsewhere.
type Region string

const (
	RegionLima     Region = "LIMA_METROPOLITANA"
	RegionProvince Region = "PROVINCIA"
)

var (
	// ErrUnknownRegion is returned when a destination payload carries an
	// unrecognised region discriminator.
	ErrUnknownRegion = errors.New("delivery: unknown region")
	// ErrInvalidPoint is returned when a Lima destination has no usable
	// map coordinate.
	ErrInvalidPoint = errors.New("delivery: invalid destination coordinates")
)

// Destination is the delivery target chosen at checkout. It is a closed sum:
// LimaDestination carries a map pin, ProvinceDestination carries the agency
// paperwork. Fields required for one region never leak into the other.
type Destination interface {
	Region() Region
	validate() error
}

// LimaDestination is a point inside Lima Metropolitana selected on the map.
type LimaDestination struct {
	Point geo.Point `json:"point"`
}

// Region implements Destination.
func (LimaDestination) Region() Region { return RegionLima }

func (d LimaDestination) validate() error {
	if !d.Point.Valid() {
		return ErrInvalidPoint
	}
	return nil
}

// ProvinceDestination identifies a shipping-agency pickup outside Lima.
// The agency collects its own recharge; no distance is computed.
type ProvinceDestination struct {
	AgencyID string `json:"agencyId"`
	DNI      string `json:"dni"`
	Phone    string `json:"phone"`
}

// Region implements Destination.
func (ProvinceDestination) Region() Region { return RegionProvince }

func (d ProvinceDestination) validate() error {
	if strings.TrimSpace(d.AgencyID) == "" {
		return errors.New("delivery: agencyId is required for provincia")
	}
	if strings.TrimSpace(d.DNI) == "" {
		return errors.New("delivery: dni is required for provincia")
	}
	if strings.TrimSpace(d.Phone) == "" {
		return errors.New("delivery: phone is required for provincia")
	}
	return nil
}

type destinationEnvelope struct {
	Region   Region          `json:"region"`
	Point    *geo.Point      `json:"point,omitempty"`
	AgencyID string          `json:"agencyId,omitempty"`
	DNI      string          `json:"dni,omitempty"`
	Phone    string          `json:"phone,omitempty"`
	Raw      json.RawMessage `json:"-"`
}

// MarshalDestination encodes a destination with its region discriminator.
func MarshalDestination(d Destination) ([]byte, error) {
	if d == nil {
		return nil, errors.New("delivery: destination is nil")
	}
	switch v := d.(type) {
	case LimaDestination:
		return json.Marshal(destinationEnvelope{Region: RegionLima, Point: &v.Point})
	case ProvinceDestination:
		return json.Marshal(destinationEnvelope{Region: RegionProvince, AgencyID: v.AgencyID, DNI: v.DNI, Phone: v.Phone})
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnknownRegion, d)
	}
}

// UnmarshalDestination decodes a destination payload and enforces the
// region-conditional required fields.
func UnmarshalDestination(data []byte) (Destination, error) {
	var env destinationEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("delivery: decode destination: %w", err)
	}
	switch env.Region {
	case RegionLima:
		if env.Point == nil {
			return nil, ErrInvalidPoint
		}
		dest := LimaDestination{Point: *env.Point}
		if err := dest.validate(); err != nil {
			return nil, err
		}
		return dest, nil
	case RegionProvince:
		dest := ProvinceDestination{AgencyID: env.AgencyID, DNI: env.DNI, Phone: env.Phone}
		if err := dest.validate(); err != nil {
			return nil, err
		}
		return dest, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownRegion, env.Region)
	}
}
