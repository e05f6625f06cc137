package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/pkg/errors"

	"github.com/tigerbot-team/tigerbot/swerve/pkg/bno08x"
	"github.com/tigerbot-team/tigerbot/swerve/pkg/chassis"
	"github.com/tigerbot-team/tigerbot/swerve/pkg/config"
	"github.com/tigerbot-team/tigerbot/swerve/pkg/cornerplot"
	"github.com/tigerbot-team/tigerbot/swerve/pkg/encoders"
	"github.com/tigerbot-team/tigerbot/swerve/pkg/pca9685"
	"github.com/tigerbot-team/tigerbot/swerve/pkg/pose"
	"github.com/tigerbot-team/tigerbot/swerve/pkg/swervedrive"
)

var CLI struct {
	Corners CornersCmd `cmd:"" help:"Print the wheel contact poses for a chassis pose."`
	Sim     SimCmd     `cmd:"" help:"Run the drive loop against the simulated drivetrain."`
	Run     RunCmd     `cmd:"" help:"Run the drive loop on the robot until interrupted."`
}

type CornersCmd struct {
	TrackWidth float64 `default:"20" help:"Distance between left and right wheels."`
	WheelBase  float64 `default:"30" help:"Distance between front and back wheels."`
	X          float64 `help:"Chassis centre X."`
	Y          float64 `help:"Chassis centre Y."`
	Angle      float64 `help:"Chassis heading in degrees, anticlockwise."`

	PNG   string  `name:"png" type:"path" help:"Also render the corners to this PNG file."`
	Size  int     `default:"400" help:"PNG width and height in pixels."`
	Scale float64 `help:"PNG pixels per unit; 0 fits the chassis."`
}

func (c *CornersCmd) Run() error {
	g, err := chassis.NewGeometry(c.TrackWidth, c.WheelBase)
	if err != nil {
		return err
	}
	corners := chassis.Resolve(g, pose.Pose{Angle: c.Angle, X: c.X, Y: c.Y})
	fmt.Println("centre:", corners.Center)
	for m, p := range corners.ByModule() {
		fmt.Printf("%v: %v\n", chassis.Module(m), p)
	}
	if c.PNG != "" {
		return cornerplot.SavePNG(c.PNG, g, corners, cornerplot.Options{Size: c.Size, Scale: c.Scale})
	}
	return nil
}

type SimCmd struct {
	Config    string    `type:"path" help:"Robot config; defaults are used if empty."`
	Ticks     int       `default:"100" help:"Number of loop ticks to simulate."`
	Targets   []float64 `default:"90" help:"Steering target in degrees: one for all modules or one per module (FL,FR,BL,BR)."`
	SteerRate float64   `default:"50" help:"Steering counts moved per tick at full output."`
	DriveRate int64     `default:"0" help:"Drive counts per tick."`
	PNG       string    `name:"png" type:"path" help:"Render the final corners to this PNG file."`
}

func (c *SimCmd) Run() error {
	cfg := config.Default()
	if c.Config != "" {
		var err error
		if cfg, err = config.Load(c.Config); err != nil {
			return err
		}
	}
	cfg.Encoders.Kind = config.EncodersSim
	dcfg, err := swervedrive.ConfigFrom(cfg)
	if err != nil {
		return err
	}
	targets, err := parseTargets(c.Targets)
	if err != nil {
		return err
	}

	sim := encoders.NewSim(c.SteerRate, c.DriveRate, dcfg.Interval)
	drive, err := swervedrive.New(dcfg, sim, bno08x.Fixed(cfg.Gyro.Heading), sim)
	if err != nil {
		return err
	}
	if err := drive.SetTargets(targets); err != nil {
		return err
	}

	now := time.Unix(0, 0)
	for i := 0; i < c.Ticks; i++ {
		if err := drive.Step(now); err != nil {
			return err
		}
		printSnapshot(drive.Snapshot())
		now = now.Add(dcfg.Interval)
	}
	if s := drive.Snapshot(); s != nil && c.PNG != "" {
		return cornerplot.SavePNG(c.PNG, dcfg.Geometry, s.Corners, cornerplot.Options{})
	}
	return nil
}

type RunCmd struct {
	Config  string        `type:"path" default:"${config_path}" help:"Robot config file."`
	Targets []float64     `help:"Initial steering target: one for all modules or one per module (FL,FR,BL,BR)."`
	Report  time.Duration `default:"1s" help:"How often to print the drive state."`
}

func (c *RunCmd) Run() error {
	cfg, err := config.Load(c.Config)
	if err != nil {
		return err
	}
	dcfg, err := swervedrive.ConfigFrom(cfg)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	registerSignalHandlers(cancel)

	var enc encoders.Interface
	var out swervedrive.SteeringOutput
	switch cfg.Encoders.Kind {
	case config.EncodersI2C:
		board, err := encoders.OpenI2C(cfg.Encoders.Bus, cfg.Encoders.Address)
		if err != nil {
			return err
		}
		defer board.Close()
		pwm, err := pca9685.Open(cfg.Servos.Device, cfg.Servos.Address)
		if err != nil {
			return err
		}
		servos := pca9685.NewSteeringServos(pwm, cfg.Servos.Ports.PerModule(), cfg.Servos.Inverted.PerModule())
		defer servos.Close()
		enc, out = board, servos
	default:
		sim := encoders.NewSim(50, 0, dcfg.Interval)
		enc, out = sim, sim
	}

	// Background loops all exit on ctx and are waited for before the
	// hardware is closed.
	var wg sync.WaitGroup
	defer func() {
		cancel()
		wg.Wait()
	}()

	var heading swervedrive.HeadingSource
	switch cfg.Gyro.Kind {
	case config.GyroSerial:
		gyro := bno08x.New(cfg.Gyro.Device, cfg.Gyro.Baud)
		wg.Add(1)
		go gyro.Loop(ctx, &wg)
		heading = gyro
	default:
		heading = bno08x.Fixed(cfg.Gyro.Heading)
	}

	drive, err := swervedrive.New(dcfg, enc, heading, out)
	if err != nil {
		return err
	}
	if len(c.Targets) > 0 {
		targets, err := parseTargets(c.Targets)
		if err != nil {
			return err
		}
		if err := drive.SetTargets(targets); err != nil {
			return err
		}
	}

	wg.Add(1)
	go drive.Loop(ctx, &wg)

	ticker := time.NewTicker(c.Report)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if s := drive.Snapshot(); s != nil {
				printSnapshot(s)
			}
		}
	}
}

func parseTargets(targets []float64) (chassis.PerModule[float64], error) {
	switch len(targets) {
	case 1:
		return chassis.Uniform(targets[0]), nil
	case chassis.NumModules:
		var p chassis.PerModule[float64]
		copy(p[:], targets)
		return p, nil
	}
	return chassis.PerModule[float64]{}, errors.Errorf("need 1 or %d targets, got %d", chassis.NumModules, len(targets))
}

func printSnapshot(s *swervedrive.Snapshot) {
	fmt.Printf("%4d steer=%6.1f cmd=%5.2f state=%v pos=%v v=%.1f\n",
		s.Tick, s.Steering, s.Outputs, s.States, s.Position, s.Velocity)
}

func registerSignalHandlers(cancelFunc context.CancelFunc) {
	// Hook Ctrl-C to cause shut down.
	signals := make(chan os.Signal, 2)
	signal.Notify(signals, syscall.SIGTERM, syscall.SIGINT)
	go func() {
		s := <-signals
		log.Println("Signal: ", s)
		cancelFunc()
		time.Sleep(2 * time.Second)
		os.Exit(0)
	}()
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name("swervectl"),
		kong.Description("Swerve drive geometry and steering loop tools."),
		kong.UsageOnError(),
		kong.Vars{"config_path": config.DefaultPath},
	)
	if err := ctx.Run(); err != nil {
		log.Fatal(err)
	}
}
