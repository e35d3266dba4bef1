// Package poller keeps the snapshot catalog warm in the background.
//
// On each tick the poller asks the refresh coordinator to ensure freshness,
// so reads rarely pay for an upstream call. It is optional: a zero interval
// disables it and refreshes happen only on read.
package poller
