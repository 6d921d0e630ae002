package delivery_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mascotienda/backend-tienda/internal/delivery"
	"github.com/mascotienda/backend-tienda/internal/geo"
)

func TestDestinationRoundTripLima(t *testing.T) {
	t.Parallel()

	in := delivery.LimaDestination{Point: geo.Point{Lat: -12.1211, Lng: -77.0297}}
	data, err := delivery.MarshalDestination(in)
	require.NoError(t, err)

	out, err := delivery.UnmarshalDestination(data)
	require.NoError(t, err)
	require.Equal(t, in, out)
	require.Equal(t, delivery.RegionLima, out.Region())
}

func TestDestinationRoundTripProvince(t *testing.T) {
	t.Parallel()

	in := delivery.ProvinceDestination{AgencyID: "shalom-arequipa", DNI: "70123456", Phone: "+51 987 654 321"}
	data, err := delivery.MarshalDestination(in)
	require.NoError(t, err)

	out, err := delivery.UnmarshalDestination(data)
	require.NoError(t, err)
	require.Equal(t, in, out)
	require.Equal(t, delivery.RegionProvince, out.Region())
}

func TestUnmarshalRejectsUnknownRegion(t *testing.T) {
	t.Parallel()

	_, err := delivery.UnmarshalDestination([]byte(`{"region":"CALLAO"}`))
	require.ErrorIs(t, err, delivery.ErrUnknownRegion)
}

func TestUnmarshalLimaRequiresPoint(t *testing.T) {
	t.Parallel()

	_, err := delivery.UnmarshalDestination([]byte(`{"region":"LIMA_METROPOLITANA"}`))
	require.ErrorIs(t, err, delivery.ErrInvalidPoint)
}

func TestUnmarshalProvinceRequiresPaperwork(t *testing.T) {
	t.Parallel()

	cases := []string{
		`{"region":"PROVINCIA","dni":"70123456","phone":"+51 987 654 321"}`,
		`{"region":"PROVINCIA","agencyId":"olva","phone":"+51 987 654 321"}`,
		`{"region":"PROVINCIA","agencyId":"olva","dni":"70123456"}`,
	}
	for _, raw := range cases {
		_, err := delivery.UnmarshalDestination([]byte(raw))
		require.Error(t, err, raw)
	}
}
