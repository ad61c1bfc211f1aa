// Package cli is the interactive LifeLink terminal client.
//
// App wires configuration, the local credential store, the directory
// client, the session and both dashboards behind a REPL. Every command
// first navigates through the route gate to the view it belongs to, so a
// signed-out user asking for "search" lands on the login view instead.
//
// While the REPL runs, a cron job checks the held token's expiry claim and
// logs the user out once it has passed. Search results are mirrored into a
// GeoJSON file that any map viewer can follow.
package cli
