package schema

import (
	"fmt"

	"github.com/specfuse/specfuse/pkg/records"
)

// Default returns the compiled-in schema for a product type. These tables
// seed the alias sets actually observed across marketplace scrapes, internal
// CSV exports, and LLM-normalized output; YAML configuration can replace
// them wholesale via LoadFile.
func Default(productType records.ProductType) *Schema {
	var fields []Field
	switch productType {
	case records.ProductTypePhones:
		fields = append(commonFields(), phoneFields()...)
	case records.ProductTypeTV:
		fields = append(commonFields(), tvFields()...)
	case records.ProductTypeWatch:
		fields = append(commonFields(), watchFields()...)
	default:
		panic(fmt.Sprintf("no default schema for product type %q", productType))
	}

	s, err := New(productType, fields)
	if err != nil {
		// Compiled defaults are validated by tests; a failure here is a
		// programming error, not a runtime condition.
		panic(err)
	}
	return s
}

func commonFields() []Field {
	return []Field{
		{Path: "brand", Kind: KindString, Aliases: []string{"manufacturer", "product_brand"}},
		{Path: "model.name", Kind: KindString, Aliases: []string{"model_name"}},
		{Path: "model.number", Kind: KindString, Aliases: []string{"item_model_number", "model_number", "model_no", "modelname"}},
		{Path: "color", Kind: KindString, Aliases: []string{"colour", "dial_color", "strap_color"}},
		{Path: "os", Kind: KindString, Aliases: []string{"operating_system"}},
		{Path: "display.size", Kind: KindString, Aliases: []string{"display_size", "standing_screen_display_size", "screen_size"}},
		{Path: "display.type", Kind: KindString, Aliases: []string{"display_type", "screen_type", "display_technology"}},
		{Path: "display.resolution", Kind: KindString, Aliases: []string{"resolution", "screen_resolution", "display_resolution"}},
		{Path: "battery.capacity", Kind: KindNumber, Aliases: []string{"battery_capacity", "battery_power_rating"}},
		{Path: "weight", Kind: KindString, Aliases: []string{"item_weight"}},
		{Path: "weight.verified", Kind: KindString, Aliases: []string{"weight_verified", "item_weight_verified"}},
		{Path: "dimensions", Kind: KindString, Aliases: []string{"product_dimensions"}},
		{Path: "warranty", Kind: KindString, Aliases: []string{"warranty_period", "warranty_description", "warranty_details", "warranty_terms"}},
		{Path: "price", Kind: KindNumber, Aliases: []string{"cost", "retail_price"}},
		{Path: "release_date", Kind: KindString, Aliases: []string{"launch_date", "availability_date"}},
		{Path: "special_features", Kind: KindStringList, Aliases: []string{"features", "feature_list", "specifications", "specs"}},
		{Path: "connectivity.technologies", Kind: KindStringList, Aliases: []string{"connectivity", "network_technology", "connectivity_technologies", "connectivity_options"}},
		{Path: "connectivity.bluetooth", Kind: KindString, Aliases: []string{"bluetooth", "bluetooth_version", "bluetooth_features"}},
		{Path: "connectivity.nfc", Kind: KindBool, Aliases: []string{"nfc", "near_field_communication"}},
		{Path: "materials", Kind: KindString, Aliases: []string{"build_materials", "case_material"}},
		{Path: "water_resistance", Kind: KindString, Aliases: []string{"water_proofing", "ip_rating"}},
		{Path: "charging", Kind: KindString, Aliases: []string{"charging_type", "charging_speed"}},
		{Path: "charging.fast", Kind: KindBool, Aliases: []string{"fast_charging"}},
		{Path: "charging.port", Kind: KindString, Aliases: []string{"charging_port", "port_type", "connector_type"}},
		{Path: "audio", Kind: KindString, Aliases: []string{"sound_features", "speaker_specifications"}},
		{Path: "accessories", Kind: KindStringList, Aliases: []string{"included_accessories", "box_contents"}},
	}
}

func phoneFields() []Field {
	return []Field{
		{Path: "ram", Kind: KindString, Aliases: []string{"ram_capacity", "ram_memory_installed_size"}},
		{Path: "storage", Kind: KindString, Aliases: []string{"internal_storage", "storage_memory", "memory_storage_capacity"}},
		{Path: "camera", Kind: KindGroup, Aliases: []string{"camera_features", "camera_specifications"}},
		{Path: "processor", Kind: KindString, Aliases: []string{"cpu", "chipset", "processor_brand"}},
		{Path: "sim", Kind: KindString, Aliases: []string{"sim_card_type", "sim_slots", "sim_configuration"}},
		{Path: "video", Kind: KindString, Aliases: []string{"video_features", "video_specifications"}},
		{Path: "audio_jack", Kind: KindString, Aliases: []string{"headphone_jack", "audio_port"}},
	}
}

func watchFields() []Field {
	return []Field{
		{Path: "sensors", Kind: KindStringList, Aliases: []string{"sensor_features", "sensor_specifications"}},
		{Path: "gps", Kind: KindBool, Aliases: []string{"navigation", "location_services"}},
		{Path: "compatibility", Kind: KindString, Aliases: []string{"compatible_devices", "phone_compatibility"}},
		{Path: "battery.life", Kind: KindString, Aliases: []string{"battery_life", "battery_backup"}},
	}
}

func tvFields() []Field {
	return []Field{
		{Path: "smart_features", Kind: KindStringList, Aliases: []string{"smart_tv_features", "smart_platform"}},
		{Path: "hdmi_ports", Kind: KindNumber, Aliases: []string{"hdmi", "hdmi_port_count"}},
		{Path: "refresh_rate", Kind: KindString, Aliases: []string{"refresh_rate_hz"}},
		{Path: "mounting", Kind: KindString, Aliases: []string{"mounting_type", "wall_mount"}},
	}
}
