package types

// AppName is used for config paths, logging and the health endpoint.
const AppName = "hermit"

// Version is overridden at release time via -ldflags "-X".
var Version = "0.2.0"
