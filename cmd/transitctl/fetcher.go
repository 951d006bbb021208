package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/theoremus-urban-solutions/transit-fusion/gtfsrt"
)

// decodeFeed reads a GTFS-RT feed from a URL or a local file and prints a
// summary of it. kind selects the decoder: tu, vp or alerts.
func decodeFeed(ctx context.Context, kind, urlOrPath, credential, header string) error {
	if !strings.HasPrefix(urlOrPath, "http://") && !strings.HasPrefix(urlOrPath, "https://") {
		data, err := os.ReadFile(urlOrPath)
		if err != nil {
			return fmt.Errorf("read %s: %w", urlOrPath, err)
		}
		return printDecoded(kind, data)
	}

	client := gtfsrt.NewClient(credential, gtfsrt.WithHeader(header))
	switch kind {
	case "tu":
		feed, err := client.FetchTripUpdates(ctx, urlOrPath)
		if err != nil {
			return err
		}
		printTripUpdates(feed)
	case "vp":
		feed, err := client.FetchVehiclePositions(ctx, urlOrPath)
		if err != nil {
			return err
		}
		printVehicles(feed.Positions)
	case "alerts":
		feed, err := client.FetchServiceAlerts(ctx, urlOrPath)
		if err != nil {
			return err
		}
		printAlerts(feed.Alerts)
	default:
		return fmt.Errorf("unknown feed kind %q", kind)
	}
	return nil
}

func printDecoded(kind string, data []byte) error {
	switch kind {
	case "tu":
		feed, err := gtfsrt.DecodeTripUpdates(data)
		if err != nil {
			return err
		}
		printTripUpdates(feed)
	case "vp":
		feed, err := gtfsrt.DecodeVehiclePositions(data)
		if err != nil {
			return err
		}
		printVehicles(feed.Positions)
	case "alerts":
		feed, err := gtfsrt.DecodeServiceAlerts(data)
		if err != nil {
			return err
		}
		printAlerts(feed.Alerts)
	default:
		return fmt.Errorf("unknown feed kind %q", kind)
	}
	return nil
}

func printTripUpdates(feed *gtfsrt.TripUpdateFeed) {
	fmt.Printf("%d entities, %d stop updates\n", feed.Header.Entities, len(feed.Updates))
	for _, u := range feed.Updates {
		fmt.Printf("%-24s %-12s %+6ds %s\n", u.TripID, u.StopID, u.DelaySeconds, u.ScheduleRelationship)
	}
}

func printVehicles(vps []gtfsrt.VehiclePosition) {
	for _, v := range vps {
		fmt.Printf("%-12s trip=%-24s %.5f,%.5f\n", v.VehicleID, v.TripID, v.Latitude, v.Longitude)
	}
}

func printAlerts(alerts []gtfsrt.ServiceAlert) {
	for _, a := range alerts {
		fmt.Printf("[%s] %s\n", a.Severity, a.Header)
		if a.Description != "" {
			fmt.Printf("    %s\n", a.Description)
		}
	}
}
