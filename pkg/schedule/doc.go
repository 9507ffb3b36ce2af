// Package schedule runs file format exports on cron schedules.
//
// Each Job names a format definition and either a fixed list of record ids
// or every record of the format's model:
//
//	scheduler, err := schedule.NewScheduler(schedule.Config{
//	    Jobs: []schedule.Job{
//	        {Name: "nightly-parties", Schedule: "0 2 * * *", Format: "party-export", All: true},
//	    },
//	    Formats:  registry,
//	    Exporter: exporter,
//	    Lister:   resolver,
//	    Recorder: collector,
//	})
//	if err != nil {
//	    return err
//	}
//	if err := scheduler.Start(ctx); err != nil {
//	    return err
//	}
//	defer scheduler.Stop()
//
// Formats are looked up at execution time, so a definition reloaded from
// disk takes effect on the next run. Formats whose state is not "active"
// are skipped.
package schedule
