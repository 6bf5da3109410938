package version

const SWARMGATE_VERSION = "1.2.0"
