package bridge

type Configuration struct {
	Endpoint         string  `json:"endpoint"`
	Verbosity        int     `json:"verbosity"`
	RunNumber        int     `json:"run_number"`
	MaxSteps         int     `json:"max_steps"`
	CaptureRadius    float64 `json:"capture_radius"`
	NoDB             bool    `json:"no_db"`
	Host             string  `json:"host"`
	User             string  `json:"user"`
	Passwd           string  `json:"pass"`
	DBName           string  `json:"dbname"`
	WriteData        bool    `json:"write_data"`
	FileOut          string  `json:"file_out"`
	CompressionLevel int     `json:"compression_level"`
}

var configuration Configuration

func GetConfiguration() Configuration {
	return configuration
}

func SetConfiguration(config Configuration) {
	configuration = config
}
