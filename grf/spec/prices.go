package spec

import "github.com/mogaika/newgrf_browser/grf/feature"

type Price uint8

const (
	NoPrice              Price = 0xFF
	InvalidPriceModifier       = -9
	MaxPriceModifier           = 16
)

// PriceBase describes one base cost a module may scale. Feature is the
// feature a module must define objects of for the multiplier to stay
// local to the module.
type PriceBase struct {
	Name     string
	Feature  feature.Feature
	Fallback Price
}

const (
	PriceClearWater    Price = 34
	PriceClearHouse    Price = 40
	PriceClearRough    Price = 23
	PriceBuildStation  Price = 9
	PriceBuildIndustry Price = 48
)

var PriceBases = []PriceBase{
	{"station_value", feature.Invalid, NoPrice},
	{"build_rail", feature.Invalid, NoPrice},
	{"build_road", feature.Invalid, NoPrice},
	{"build_signals", feature.Invalid, NoPrice},
	{"build_bridge", feature.Invalid, NoPrice},
	{"build_depot_train", feature.Invalid, NoPrice},
	{"build_depot_road", feature.Invalid, NoPrice},
	{"build_depot_ship", feature.Invalid, NoPrice},
	{"build_tunnel", feature.Invalid, NoPrice},
	{"build_station_rail", feature.Stations, NoPrice},
	{"build_station_rail_length", feature.Stations, NoPrice},
	{"build_station_airport", feature.Invalid, NoPrice},
	{"build_station_bus", feature.Invalid, NoPrice},
	{"build_station_truck", feature.Invalid, NoPrice},
	{"build_station_dock", feature.Invalid, NoPrice},
	{"build_vehicle_train", feature.Trains, NoPrice},
	{"build_vehicle_wagon", feature.Trains, NoPrice},
	{"build_vehicle_aircraft", feature.Aircraft, NoPrice},
	{"build_vehicle_road", feature.RoadVehicles, NoPrice},
	{"build_vehicle_ship", feature.Ships, NoPrice},
	{"build_trees", feature.Invalid, NoPrice},
	{"terraform", feature.Invalid, NoPrice},
	{"clear_grass", feature.Invalid, NoPrice},
	{"clear_rough", feature.Invalid, NoPrice},
	{"clear_rocks", feature.Invalid, NoPrice},
	{"clear_fields", feature.Invalid, NoPrice},
	{"clear_trees", feature.Invalid, NoPrice},
	{"clear_rail", feature.Invalid, NoPrice},
	{"clear_signals", feature.Invalid, NoPrice},
	{"clear_bridge", feature.Invalid, NoPrice},
	{"clear_depot_train", feature.Invalid, NoPrice},
	{"clear_depot_road", feature.Invalid, NoPrice},
	{"clear_depot_ship", feature.Invalid, NoPrice},
	{"clear_tunnel", feature.Invalid, NoPrice},
	{"clear_water", feature.Invalid, NoPrice},
	{"clear_station_rail", feature.Invalid, NoPrice},
	{"clear_station_airport", feature.Invalid, NoPrice},
	{"clear_station_bus", feature.Invalid, NoPrice},
	{"clear_station_truck", feature.Invalid, NoPrice},
	{"clear_station_dock", feature.Invalid, NoPrice},
	{"clear_house", feature.Houses, NoPrice},
	{"clear_road", feature.Invalid, NoPrice},
	{"running_train_steam", feature.Trains, NoPrice},
	{"running_train_diesel", feature.Trains, NoPrice},
	{"running_train_electric", feature.Trains, NoPrice},
	{"running_aircraft", feature.Aircraft, NoPrice},
	{"running_roadveh", feature.RoadVehicles, NoPrice},
	{"running_ship", feature.Ships, NoPrice},
	{"build_industry", feature.Industries, NoPrice},
	{"clear_industry", feature.Industries, PriceClearHouse},
	{"build_object", feature.Objects, PriceClearRough},
	{"clear_object", feature.Objects, PriceClearHouse},
	{"build_waypoint_rail", feature.Stations, PriceBuildStation},
	{"clear_waypoint_rail", feature.Stations, 35},
	{"build_waypoint_buoy", feature.Invalid, 14},
	{"clear_waypoint_buoy", feature.Invalid, 39},
	{"town_action", feature.Invalid, 2},
	{"build_foundation", feature.Invalid, 21},
	{"build_industry_raw", feature.Industries, PriceBuildIndustry},
	{"build_town", feature.Invalid, 2},
	{"build_canal", feature.Invalid, PriceClearWater},
	{"clear_canal", feature.Invalid, PriceClearWater},
	{"build_aqueduct", feature.Invalid, 4},
	{"clear_aqueduct", feature.Invalid, 29},
	{"build_lock", feature.Invalid, PriceClearWater},
	{"clear_lock", feature.Invalid, PriceClearWater},
	{"infrastructure_rail", feature.Invalid, NoPrice},
	{"infrastructure_road", feature.Invalid, NoPrice},
	{"infrastructure_water", feature.Invalid, NoPrice},
	{"infrastructure_station", feature.Invalid, NoPrice},
	{"infrastructure_airport", feature.Invalid, NoPrice},
}

var PriceCount = len(PriceBases)

// PriceMultipliers holds per price base scale exponents, InvalidPriceModifier
// marks a price the module did not touch.
type PriceMultipliers []int8

func NewPriceMultipliers() PriceMultipliers {
	m := make(PriceMultipliers, PriceCount)
	for i := range m {
		m[i] = InvalidPriceModifier
	}
	return m
}
