// Package source talks to the host that publishes the historical score table.
//
// Client.Reachable is the connectivity check consulted once before ingestion;
// Client.Fetch performs the single GET of the table document.
package source
