package version

var (
	AppName = "parrot"
	Version = "dev"
)
