// Package robots answers one question per domain: may this crawler visit it
// at all? The verdict comes from the domain's robots.txt and is cached, and
// an unreachable robots.txt counts as permission.
package robots
