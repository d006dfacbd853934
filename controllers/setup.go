package controllers

import (
	"github.com/bookably/booking-app/booking"
	"github.com/bookably/booking-app/redis"
)

var (
	Booking *booking.Service
	Slots   *redis.SlotCache
)

// Setup wires the shared engine instances the handlers use.
func Setup(svc *booking.Service, slots *redis.SlotCache) {
	Booking = svc
	Slots = slots
}
