package main

import (
	"fmt"
	"io"
	"sort"

	"github.com/gethiox/padshim/internal/pkg/input"
	"github.com/holoplot/go-evdev"
	"gopkg.in/yaml.v3"
)

type axisReport struct {
	Code string `yaml:"code"`
	Min  int32  `yaml:"min"`
	Max  int32  `yaml:"max"`
	Flat int32  `yaml:"flat,omitempty"`
	Fuzz int32  `yaml:"fuzz,omitempty"`
}

type deviceReport struct {
	Path    string       `yaml:"path"`
	Name    string       `yaml:"name"`
	Bus     string       `yaml:"bus"`
	Vendor  string       `yaml:"vendor"`
	Product string       `yaml:"product"`
	Types   []string     `yaml:"types,flow"`
	Axes    []axisReport `yaml:"axes,omitempty"`
	Error   string       `yaml:"error,omitempty"`
}

type absSource interface {
	AbsInfos() (map[evdev.EvCode]evdev.AbsInfo, error)
	Close() error
}

func openHandle(info input.DeviceInfo) (absSource, error) {
	h, err := input.Open(info)
	if err != nil {
		return nil, err
	}
	return h, nil
}

// reportDevices describes every device with an event handler,
// absolute axes are read from opened devices when open succeeds
func reportDevices(infos []input.DeviceInfo, open func(info input.DeviceInfo) (absSource, error)) []deviceReport {
	var reports []deviceReport

	for _, info := range infos {
		path := info.EventPath()
		if path == "" {
			continue
		}

		r := deviceReport{
			Path:    path,
			Name:    info.Name,
			Bus:     input.BusName(info.ID.Bus),
			Vendor:  fmt.Sprintf("0x%04x", info.ID.Vendor),
			Product: fmt.Sprintf("0x%04x", info.ID.Product),
		}
		for _, t := range info.CapableTypes() {
			r.Types = append(r.Types, input.TypeName(t))
		}

		if info.HasAbs() && open != nil {
			h, err := open(info)
			if err != nil {
				r.Error = err.Error()
			} else {
				absInfos, err := h.AbsInfos()
				if err != nil {
					r.Error = err.Error()
				}
				r.Axes = axesReport(absInfos)
				_ = h.Close()
			}
		}

		reports = append(reports, r)
	}
	return reports
}

func axesReport(absInfos map[evdev.EvCode]evdev.AbsInfo) []axisReport {
	var codes []evdev.EvCode
	for code := range absInfos {
		codes = append(codes, code)
	}
	sort.Slice(codes, func(i, j int) bool { return codes[i] < codes[j] })

	var axes []axisReport
	for _, code := range codes {
		abs := absInfos[code]
		axes = append(axes, axisReport{
			Code: input.AbsName(code),
			Min:  abs.Minimum,
			Max:  abs.Maximum,
			Flat: abs.Flat,
			Fuzz: abs.Fuzz,
		})
	}
	return axes
}

func listDevices(w io.Writer) error {
	infos, err := input.GetHandlers()
	if err != nil {
		return fmt.Errorf("listing devices failed: %w", err)
	}

	data, err := yaml.Marshal(reportDevices(infos, openHandle))
	if err != nil {
		return fmt.Errorf("encoding report failed: %w", err)
	}

	_, err = w.Write(data)
	return err
}
