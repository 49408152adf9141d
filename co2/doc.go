// Package co2 loads the Mauna Loa monthly mean CO2 record published by the
// NOAA Global Monitoring Laboratory, either over HTTP or from a local copy of
// the data file, and exposes it as a gap-free monthly series ready for
// modeling.
package co2
