// Package cadence 提供了一个带漂移补偿的周期任务执行器
//
// 基本用法:
//
//	engine := cadence.NewFunc(100, cadence.Millisecond, func() {
//	    fmt.Println("当前时间:", time.Now())
//	})
//	defer engine.Close()
//
// 引擎在创建时立即启动。每个周期先执行动作，再用目标周期减去动作耗时得到
// 睡眠时长，使长期平均周期收敛到配置值。动作耗时超过一个周期时只补偿当前
// 周期内的余数，不补跑错过的周期。
//
// 实现 Action 接口:
//
//	type Sampler struct{}
//
//	func (s *Sampler) Do() { ... }
//
//	engine := cadence.New(5, cadence.Second, &Sampler{})
//
// 禁用的定时器:
//
//	engine := cadence.New(0, cadence.Second, action) // 不会启动执行协程
//
// 修改周期:
//
//	engine.SetRate(250, cadence.Millisecond, true)  // 立即重启，旧统计先输出
//	engine.SetRate(250, cadence.Millisecond, false) // 下一个周期开始时生效
//
// 统计报告:
//
//	engine := cadence.New(10, cadence.Millisecond, action,
//	    cadence.WithReportUnit(cadence.Microsecond),
//	    cadence.WithReporter(cadence.ReporterFunc(func(r cadence.Report) error {
//	        fmt.Println(r.Samples, r.MeanError, r.ToleranceExceeded)
//	        return nil
//	    })),
//	)
//
// 生命周期绑定到上下文:
//
//	engine := cadence.New(1, cadence.Second, action, cadence.WithContext(ctx))
//	// ctx 取消时引擎自动停止并输出报告
//
// 优雅退出:
//
//	engine.Stop() // 等待执行协程退出，输出统计，重复调用无副作用
package cadence
