package kakaku

import (
	"memband/lib/telemetry"
)

var tracer = telemetry.Tracer("memband/scrapers/kakaku")
var meter = telemetry.Meter("memband/scrapers/kakaku")

var pagesFetched, _ = meter.Int64Counter("memband.pages_fetched")
var recordsParsed, _ = meter.Int64Counter("memband.records_parsed")
var rowsFiltered, _ = meter.Int64Counter("memband.rows_filtered")
