package version

// Version is the application version, stamped at release time.
const Version = "1.0.0"
