package remap

import "github.com/mogaika/newgrf_browser/grf/feature"

// FeatureTests lists the optional loader features and their versions.
var FeatureTests = map[string]uint16{
	"feature_test":                              1,
	"property_mapping":                          1,
	"variable_mapping":                          1,
	"action5_type_id_mapping":                   1,
	"action0_station_prop1B":                    1,
	"action0_station_disallowed_bridge_pillars": 1,
	"varaction2_station_var42":                  1,
	"more_bridge_types":                         1,
	"action0_industry_production_cargo_types":   1,
	"action0_industry_production_callback":      1,
	"action0_cargo_labels":                      1,
	"road_stops":                                1,
	"more_action2_ids":                          1,
	"action3_signals_custom_signal_sprites":     1,
	"action0_signals_programmable_signals":      1,
	"action0_signals_extra_aspects":             1,
	"action0_global_extra_station_names":        1,
	"action0_railtype_recolour":                 1,
	"action0_roadtype_extra_flags":              1,
	"action0_object_flood_resistant":            1,
	"industry_cargo_adjacent_tiles":             1,
}

type variable struct {
	f    feature.Feature
	name string
	code uint8
}

// Variables that modules may remap by name. Feature Invalid applies to
// every feature.
var variables = []variable{
	{feature.Invalid, "current_date", 0x00},
	{feature.Invalid, "current_year", 0x01},
	{feature.Invalid, "day_of_year", 0x02},
	{feature.Invalid, "climate", 0x03},
	{feature.Invalid, "trigger_bits", 0x18},
	{feature.Invalid, "random_bits", 0x5F},
	{feature.Stations, "station_platform_info", 0x40},
	{feature.Stations, "station_tile_type", 0x42},
	{feature.Stations, "station_nearby_tile_info", 0x68},
	{feature.Trains, "vehicle_curve_info", 0x45},
	{feature.Trains, "vehicle_consist_length", 0x41},
	{feature.Houses, "house_building_age", 0x41},
	{feature.Houses, "house_nearby_tile_info", 0x62},
	{feature.Industries, "industry_layout_count", 0x66},
	{feature.Objects, "object_view", 0x48},
	{feature.RoadStops, "roadstop_view", 0x40},
	{feature.RoadStops, "roadstop_nearby_tile_info", 0x66},
	{feature.Signals, "signal_restriction_info", 0x10},
	{feature.Signals, "signal_context", 0x11},
}

// VariableCode returns the code of a named variable.
func VariableCode(f feature.Feature, name string) (uint8, bool) {
	for _, v := range variables {
		if v.name == name && (v.f == feature.Invalid || v.f == f) {
			return v.code, true
		}
	}
	return 0, false
}
