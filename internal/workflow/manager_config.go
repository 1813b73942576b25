package workflow

import "github.com/billfold/billfold/internal/queue"

// ConfigureStages registers the concrete stage handlers the workflow will run.
// The extractor and the filer get a lane each, so a document can be filed
// while the next one is still being read.
func (m *Manager) ConfigureStages(set StageSet) {
	extract := &laneState{kind: laneExtract, name: "extract"}
	file := &laneState{kind: laneFile, name: "file"}

	if set.Extractor != nil {
		extract.stages = append(extract.stages, pipelineStage{
			name:             "extractor",
			handler:          set.Extractor,
			startStatus:      queue.StatusPending,
			processingStatus: queue.StatusExtracting,
			doneStatus:       queue.StatusReadyToFile,
		})
	}
	if set.Filer != nil {
		file.stages = append(file.stages, pipelineStage{
			name:             "filer",
			handler:          set.Filer,
			startStatus:      queue.StatusReadyToFile,
			processingStatus: queue.StatusFiling,
			doneStatus:       queue.StatusCompleted,
		})
	}

	lanes := make(map[laneKind]*laneState)
	order := make([]laneKind, 0, 2)
	if len(extract.stages) > 0 {
		extract.finalize()
		lanes[extract.kind] = extract
		order = append(order, extract.kind)
	}
	if len(file.stages) > 0 {
		file.finalize()
		lanes[file.kind] = file
		order = append(order, file.kind)
	}
	for _, lane := range lanes {
		lane.runReclaimer = len(lane.processingStatuses) > 0
	}

	m.mu.Lock()
	m.lanes = lanes
	m.laneOrder = order
	m.mu.Unlock()
}
