package bridge

import (
	"fmt"

	_ "github.com/go-sql-driver/mysql"
	sqlx "github.com/jmoiron/sqlx" //make alias name the package to sqlx
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// ChannelPosition is the location of one instrumented channel in detector
// coordinates.
type ChannelPosition struct {
	X float64
	Y float64
	Z float64
}

// ChannelMap is the detector description consumed by the bridge: the set of
// instrumented channel ids and their positions, valid for one run range.
type ChannelMap struct {
	Positions map[uint32]ChannelPosition
}

func (m *ChannelMap) Has(channel uint32) bool {
	_, ok := m.Positions[channel]
	return ok
}

func (m *ChannelMap) NumChannels() int {
	return len(m.Positions)
}

// Channels returns the channel ids in ascending order.
func (m *ChannelMap) Channels() []uint32 {
	channels := maps.Keys(m.Positions)
	slices.Sort(channels)
	return channels
}

func ConnectToDatabase(user string, pass string, host string, dbname string) (*sqlx.DB, error) {
	port := "3306"
	dbURI := fmt.Sprintf("%s:%s@(%s:%s)/%s?parseTime=true", user, pass, host, port, dbname)
	db, err := sqlx.Connect("mysql", dbURI)
	return db, err
}

type channelPositionEntry struct {
	SensorID int     `db:"SensorID"`
	X        float64 `db:"X"`
	Y        float64 `db:"Y"`
	Z        float64 `db:"Z"`
}

// GetChannelMapFromDB reads the instrumented channel positions valid for the
// given run number.
func GetChannelMapFromDB(db *sqlx.DB, runNumber int) (*ChannelMap, error) {
	query := "SELECT SensorID, X, Y, Z FROM ChannelPosition WHERE MinRun <= %d and MaxRun >= %d ORDER BY SensorID"
	query = fmt.Sprintf(query, runNumber, runNumber)

	if configuration.Verbosity > 0 {
		logger.Info("Channel positions read from DB", "database")
	}
	if configuration.Verbosity > 2 {
		message := fmt.Sprintf("Query: %s", query)
		logger.Info(message, "database")
	}

	rows, err := db.Queryx(query)
	if err != nil {
		errMessage := fmt.Errorf("error querying database: %w", err)
		return nil, errMessage
	}

	channelMap := &ChannelMap{
		Positions: make(map[uint32]ChannelPosition),
	}
	for rows.Next() {
		result := channelPositionEntry{}
		err := rows.StructScan(&result)
		if err != nil {
			errMessage := fmt.Errorf("error scanning DB row: %w", err)
			return nil, errMessage
		}
		channelMap.Positions[uint32(result.SensorID)] = ChannelPosition{
			X: result.X,
			Y: result.Y,
			Z: result.Z,
		}
	}

	if configuration.Verbosity > 0 {
		message := fmt.Sprintf("Loaded %d channels for run %d", channelMap.NumChannels(), runNumber)
		logger.Info(message, "database")
	}
	return channelMap, nil
}

// LoadChannelMap connects the configured database and reads the channel map
// for the configured run.
func LoadChannelMap(db *sqlx.DB, runNumber int) (*ChannelMap, error) {
	channelMap, err := GetChannelMapFromDB(db, runNumber)
	if err != nil {
		errMessage := fmt.Errorf("error getting channel map from database: %w", err)
		logger.Error(errMessage.Error())
		return nil, errMessage
	}
	return channelMap, nil
}
