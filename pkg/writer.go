package bridge

import (
	"errors"
	"fmt"
	"time"

	hdf5 "github.com/jmbenlloch/go-hdf5"
)

// Writer records every served event into an HDF5 file: an event index under
// /Run, the flat hit rows under /Hits, and the channel map under /Sensors
// when one is loaded.
type Writer struct {
	File         *hdf5.File
	Filename     string
	FirstEvt     bool
	RunGroup     *hdf5.Group
	HitsGroup    *hdf5.Group
	SensorsGroup *hdf5.Group
	EventTable   *hdf5.Dataset
	RunInfoTable *hdf5.Dataset
	HitTable     *hdf5.Dataset
	ChannelTable *hdf5.Dataset
	EvtCounter   int
	HitCounter   int
}

func NewWriter(filename string) *Writer {
	writer := &Writer{}
	writer.File = openFile(filename)
	writer.Filename = filename
	writer.RunGroup = createGroup(writer.File, "Run")
	writer.HitsGroup = createGroup(writer.File, "Hits")
	writer.SensorsGroup = createGroup(writer.File, "Sensors")
	writer.EventTable = createTable(writer.RunGroup, "events", EventDataHDF5{})
	writer.RunInfoTable = createTable(writer.RunGroup, "runInfo", RunInfoHDF5{})
	writer.HitTable = createTable(writer.HitsGroup, "hits", HitDataHDF5{})
	writer.ChannelTable = createTable(writer.SensorsGroup, "DataChannel", ChannelDataHDF5{})
	writer.EvtCounter = 0
	writer.HitCounter = 0
	if configuration.Verbosity > 0 {
		message := fmt.Sprintf("Writing hit archive to %s", filename)
		logger.Info(message, "writer")
	}
	return writer
}

// WriteChannelMap records the detector channel description once per file.
func (w *Writer) WriteChannelMap(channels *ChannelMap) {
	// The array MUST be allocated at creation, if not, HDF5 will panic
	// doing appends will not work
	sorted := make([]ChannelDataHDF5, channels.NumChannels())
	for i, channel := range channels.Channels() {
		position := channels.Positions[channel]
		sorted[i] = ChannelDataHDF5{
			channel: int32(channel),
			x:       position.X,
			y:       position.Y,
			z:       position.Z,
		}
	}
	writeArrayToTable(w.ChannelTable, &sorted, 0)
}

// WriteEvent appends one aggregated reply to the archive.
func (w *Writer) WriteEvent(hits *AggregatedHits) {
	if !w.FirstEvt {
		writeEntryToTable(w.RunInfoTable, RunInfoHDF5{
			run_number: int32(configuration.RunNumber),
		}, 0)
		w.FirstEvt = true
	}

	nhits := hits.Photons.NumPhotons()
	writeEntryToTable(w.EventTable, EventDataHDF5{
		evt_number: int32(hits.EventID),
		timestamp:  uint64(time.Now().Unix()),
		nhits:      int32(nhits),
	}, w.EvtCounter)
	w.EvtCounter++

	if nhits == 0 {
		return
	}
	rows := make([]HitDataHDF5, nhits)
	for i := 0; i < nhits; i++ {
		rows[i] = HitDataHDF5{
			evt_number: int32(hits.EventID),
			channel_id: int32(hits.ChannelIDs[i]),
			x:          hits.Photons.X[i],
			y:          hits.Photons.Y[i],
			z:          hits.Photons.Z[i],
			time:       hits.Photons.Time[i],
			wavelength: hits.Photons.Wavelength[i],
		}
	}
	writeArrayToTable(w.HitTable, &rows, w.HitCounter)
	w.HitCounter += nhits
}

func (w *Writer) Close() error {
	var errs []error

	if err := w.EventTable.Close(); err != nil {
		errs = append(errs, fmt.Errorf("error closing event table: %w", err))
	}
	if err := w.RunInfoTable.Close(); err != nil {
		errs = append(errs, fmt.Errorf("error closing run info table: %w", err))
	}
	if err := w.HitTable.Close(); err != nil {
		errs = append(errs, fmt.Errorf("error closing hit table: %w", err))
	}
	if err := w.ChannelTable.Close(); err != nil {
		errs = append(errs, fmt.Errorf("error closing channel table: %w", err))
	}
	if err := w.RunGroup.Close(); err != nil {
		errs = append(errs, fmt.Errorf("error closing run group: %w", err))
	}
	if err := w.HitsGroup.Close(); err != nil {
		errs = append(errs, fmt.Errorf("error closing hits group: %w", err))
	}
	if err := w.SensorsGroup.Close(); err != nil {
		errs = append(errs, fmt.Errorf("error closing sensors group: %w", err))
	}
	if err := w.File.Close(); err != nil {
		errs = append(errs, fmt.Errorf("error closing file: %w", err))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}
