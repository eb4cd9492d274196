// Package datasource loads the rows behind a chart's data definition so the
// keyframe timeline can be simulated outside a visualization runtime.
//
// # Sources
//
// A data definition is the JSON object found under "data" in a chart:
//
//   - {"values": [...]} rows are taken as is
//   - {"url": "cars.json"} is read relative to the loader's base directory
//   - {"url": "https://..."} is fetched over HTTP
//
// Remote sources are cached through a [cache.Cache] keyed by
// [cache.Keyer.SourceKey]. Transient HTTP failures (network errors, 429 and
// 5xx responses) are retried with exponential backoff.
//
// # Formats
//
// JSON arrays of objects, JSON objects with a "format.property" path to such
// an array, CSV and TSV are understood. CSV cells that parse as numbers are
// converted, matching the "parse": "auto" behaviour of the runtime.
package datasource
