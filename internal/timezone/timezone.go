package timezone

import (
	"strings"
	"time"
)

// Fixed zones keep offer times deterministic regardless of the host's tzdata.
// Offsets are standard-time offsets; schedule feeds already bake DST into the
// timestamps they send.
var fixedZones = map[string]*time.Location{
	"UTC-8": time.FixedZone("UTC-8", -8*60*60),
	"UTC-7": time.FixedZone("UTC-7", -7*60*60),
	"UTC-6": time.FixedZone("UTC-6", -6*60*60),
	"UTC-5": time.FixedZone("UTC-5", -5*60*60),
	"UTC+0": time.UTC,
	"UTC+1": time.FixedZone("UTC+1", 1*60*60),
	"UTC+2": time.FixedZone("UTC+2", 2*60*60),
	"UTC+3": time.FixedZone("UTC+3", 3*60*60),
	"UTC+4": time.FixedZone("UTC+4", 4*60*60),
	"UTC+8": time.FixedZone("UTC+8", 8*60*60),
	"UTC+9": time.FixedZone("UTC+9", 9*60*60),
}

var airportZones = map[string]string{
	// North America
	"JFK": "UTC-5", // New York - John F. Kennedy
	"EWR": "UTC-5", // Newark - Liberty
	"BOS": "UTC-5", // Boston - Logan
	"MIA": "UTC-5", // Miami
	"ORD": "UTC-6", // Chicago - O'Hare
	"DFW": "UTC-6", // Dallas/Fort Worth
	"DEN": "UTC-7", // Denver
	"LAX": "UTC-8", // Los Angeles
	"SFO": "UTC-8", // San Francisco
	"SEA": "UTC-8", // Seattle - Tacoma
	"YYZ": "UTC-5", // Toronto - Pearson

	// Europe
	"LHR": "UTC+0", // London - Heathrow
	"LGW": "UTC+0", // London - Gatwick
	"CDG": "UTC+1", // Paris - Charles de Gaulle
	"AMS": "UTC+1", // Amsterdam - Schiphol
	"FRA": "UTC+1", // Frankfurt
	"MAD": "UTC+1", // Madrid - Barajas
	"FCO": "UTC+1", // Rome - Fiumicino
	"IST": "UTC+3", // Istanbul

	// Middle East / Asia Pacific
	"DXB": "UTC+4", // Dubai
	"DOH": "UTC+3", // Doha - Hamad
	"SIN": "UTC+8", // Singapore - Changi
	"HKG": "UTC+8", // Hong Kong
	"HND": "UTC+9", // Tokyo - Haneda
	"NRT": "UTC+9", // Tokyo - Narita
	"ICN": "UTC+9", // Seoul - Incheon
}

func GetZoneNameByAirport(code string) string {
	code = strings.ToUpper(code)
	if tz, ok := airportZones[code]; ok {
		return tz
	}
	return "UTC+0"
}

func GetLocationByAirport(code string) *time.Location {
	if loc, ok := fixedZones[GetZoneNameByAirport(code)]; ok {
		return loc
	}
	return time.UTC
}

func GetLocationByName(name string) *time.Location {
	if loc, ok := fixedZones[strings.ToUpper(name)]; ok {
		return loc
	}
	if loc, err := time.LoadLocation(name); err == nil {
		return loc
	}
	return time.UTC
}

// ParseTime accepts the timestamp shapes the upstream search feeds use.
func ParseTime(timeStr string, tzName string) (time.Time, error) {
	formats := []string{
		time.RFC3339,
		"2006-01-02T15:04:05-07:00",
		"2006-01-02T15:04:05-0700",
		"2006-01-02T15:04:05Z",
		"2006-01-02T15:04:05",
		"2006-01-02 15:04:05",
	}

	for _, format := range formats {
		if t, err := time.Parse(format, timeStr); err == nil {
			return t, nil
		}
	}

	if tzName != "" {
		loc := GetLocationByName(tzName)
		simpleFormats := []string{
			"2006-01-02T15:04:05",
			"2006-01-02 15:04:05",
			"2006-01-02T15:04",
			"2006-01-02 15:04",
		}
		for _, format := range simpleFormats {
			if t, err := time.ParseInLocation(format, timeStr, loc); err == nil {
				return t, nil
			}
		}
	}

	return time.Time{}, &time.ParseError{
		Value:   timeStr,
		Message: "unable to parse time string",
	}
}

// ConvertToAirportLocal re-expresses an instant in the airport's local zone.
func ConvertToAirportLocal(t time.Time, airportCode string) time.Time {
	return t.In(GetLocationByAirport(airportCode))
}
