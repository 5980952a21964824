package constants

import (
	"crypto/sha1"
	"encoding/hex"
	"strings"
	"time"
)

// Redis keys follow aerolink:{module}:{kind}:{identifier}

// ================== CACHE TTL DURATIONS ==================

const (
	TTL_STATIC_LONG    = 24 * time.Hour
	TTL_SEMI_STATIC    = 1 * time.Hour
	TTL_DYNAMIC_MEDIUM = 10 * time.Minute
	TTL_DYNAMIC_SHORT  = 2 * time.Minute
	TTL_REALTIME_SHORT = 30 * time.Second
)

const (
	CACHE_PREFIX = "aerolink"
)

// ================== FLIGHTS MODULE ==================

const (
	CACHE_KEY_AIRPORTS_ALL         = CACHE_PREFIX + ":flights:airports:all"
	CACHE_KEY_FLIGHTS_BY_DEPARTURE = CACHE_PREFIX + ":flights:by_departure:" // + airport-id or "all"
	CACHE_KEY_FLIGHT_SEARCH        = CACHE_PREFIX + ":flights:search:"       // + query hash
)

const (
	TTL_AIRPORTS      = TTL_STATIC_LONG
	TTL_FLIGHTS_LIST  = TTL_DYNAMIC_MEDIUM
	TTL_FLIGHT_SEARCH = TTL_DYNAMIC_SHORT
)

// ================== SEATS MODULE ==================

const (
	CACHE_KEY_OCCUPIED_SEATS = CACHE_PREFIX + ":seats:occupied:flight:" // + flight-id
)

const (
	TTL_OCCUPIED_SEATS = TTL_REALTIME_SHORT
)

// ================== BOOKING SESSIONS ==================

// Session hand-off keys. The TTL comes from REDIS_SESSION_TTL.
const (
	CACHE_KEY_BOOKING_SESSION = CACHE_PREFIX + ":booking:session:" // + session-id:{draft,seats,passengers,receipt}
)

// ================== BOOKINGS MODULE ==================

const (
	CACHE_KEY_USER_BOOKINGS = CACHE_PREFIX + ":bookings:user:" // + user-id
)

const (
	TTL_USER_BOOKINGS = TTL_DYNAMIC_MEDIUM
)

// ================== RATE LIMITING ==================

const (
	RATE_LIMIT_PREFIX = CACHE_PREFIX + ":ratelimit"
)

// ================== HELPER FUNCTIONS ==================

func BuildFlightsByDepartureKey(airportID string) string {
	if airportID == "" {
		airportID = "all"
	}
	return CACHE_KEY_FLIGHTS_BY_DEPARTURE + airportID
}

// BuildFlightSearchKey hashes the normalized search parameters so the key stays short
func BuildFlightSearchKey(parts ...string) string {
	sum := sha1.Sum([]byte(strings.ToUpper(strings.Join(parts, "|"))))
	return CACHE_KEY_FLIGHT_SEARCH + hex.EncodeToString(sum[:])
}

func BuildOccupiedSeatsKey(flightID string) string {
	return CACHE_KEY_OCCUPIED_SEATS + flightID
}

// BuildSessionKey -> "aerolink:booking:session:<id>:<part>"
func BuildSessionKey(sessionID, part string) string {
	return CACHE_KEY_BOOKING_SESSION + sessionID + ":" + part
}

func BuildUserBookingsKey(userID string) string {
	return CACHE_KEY_USER_BOOKINGS + userID
}
