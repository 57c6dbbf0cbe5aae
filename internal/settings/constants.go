package settings

// Lua schema field names and globals
const (
	luaGlobalZshift    = "zshift"
	luaFieldMeta       = "meta"
	luaFieldTrack      = "track"
	luaFieldModules    = "modules"
	luaFieldOptions    = "options"
	luaFieldName       = "name"
	luaFieldDesc       = "description"
	luaFieldPath       = "path"
	luaFieldRecursive  = "recursive"
	luaFieldRetention  = "backup_retention_days"
)

// Validation limits
const (
	// MaxTrackedItems caps the backup tracking list
	MaxTrackedItems = 200

	// DefaultRetentionDays is used when the settings file sets no retention
	DefaultRetentionDays = 30
)
