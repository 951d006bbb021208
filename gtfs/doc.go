/*
Package gtfs loads GTFS static schedule data from an extracted feed directory and
serves stop and stop-time lookups over it.

# Basic Usage

A Store holds at most one Dataset at a time. Loading resolves the agency's
directory through a DirResolver (the feed registry satisfies it) and swaps the
parsed dataset in atomically:

	store := gtfs.NewStore(reg, logger)
	if err := store.Load("wmata"); err != nil {
	    return err
	}

	stop, err := store.FindByName("Union Station")
	nearest, err := store.NearestStop(38.8977, -77.0365)

Readers never observe a partially built dataset, and a failed Load leaves the
previous dataset in place. Every read returns errs.ErrNoFeedLoaded until the
first successful Load.

# Files

The loader reads agency.txt, stops.txt, routes.txt, trips.txt, stop_times.txt,
calendar.txt and calendar_dates.txt. Only stops.txt is required; the rest are
treated as empty when absent. Rows may carry fewer columns than the header.

# Times

Stop times are kept as seconds past the service day's "noon minus 12h" and may
exceed 24:00:00 for trips running past midnight. Time.On converts them to an
absolute instant in the agency's timezone.

# Searching

Stop search is a linear scan. NearestStop compares squared differences in
degree space; DistanceMeters is provided for reporting only.
*/
package gtfs
